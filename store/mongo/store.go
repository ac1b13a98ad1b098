// Package mongo provides a Store implementation over the official
// MongoDB driver.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/streampay"
	"github.com/xraph/streampay/account"
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/journal"
	ledgerstore "github.com/xraph/streampay/store"
	"github.com/xraph/streampay/stream"
	"github.com/xraph/streampay/types"
)

// Collection name constants.
const (
	colAccounts  = "sp_accounts"
	colBonuses   = "sp_bonuses"
	colRegisters = "sp_registers"
	colStreams   = "sp_streams"
	colJournal   = "sp_journal"
)

// Register document IDs.
const (
	regNextStreamID = "next_stream_id"
	regTotalSupply  = "total_supply"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB.
//
// Sender and recipient stream lookups are served by secondary indexes on
// sp_streams rather than a separate index collection, so stream creation
// touches the counter and one document.
type Store struct {
	db *mongo.Database
}

// New creates a new MongoDB store over db.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Open connects to the MongoDB deployment at uri and returns a store
// over the named database.
func Open(uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: connect: %w", err)
	}
	return New(client.Database(database)), nil
}

// DB returns the underlying database for direct access.
func (s *Store) DB() *mongo.Database { return s.db }

// Migrate creates indexes and seeds the stream ID counter.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colStreams: {
			{Keys: bson.D{{Key: "sender", Value: 1}}},
			{Keys: bson.D{{Key: "recipient", Value: 1}}},
		},
		colJournal: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
			{Keys: bson.D{{Key: "stream_id", Value: 1}}},
			{Keys: bson.D{{Key: "ts", Value: 1}}},
		},
	}
	for col, models := range indexes {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%w: %s indexes: %v", streampay.ErrMigrationFailed, col, err)
		}
	}

	// The counter holds the last assigned stream ID, so numbering
	// starts at 1 on the first bump.
	_, err := s.db.Collection(colRegisters).UpdateOne(ctx,
		bson.M{"_id": regNextStreamID},
		bson.M{"$setOnInsert": bson.M{"seq": int64(0)}},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: seed %s: %v", streampay.ErrMigrationFailed, regNextStreamID, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *Store) Close() error {
	return s.db.Client().Disconnect(context.Background())
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// ==================== Account Store ====================

func (s *Store) GetBalance(ctx context.Context, owner id.AccountID) (types.Amount, error) {
	var m accountModel
	err := s.db.Collection(colAccounts).
		FindOne(ctx, bson.M{"_id": owner.String()}).Decode(&m)
	if isNoDocuments(err) {
		return types.ZeroAmount, nil
	}
	if err != nil {
		return types.ZeroAmount, fmt.Errorf("streampay/mongo: get balance: %w", err)
	}
	return types.ParseAmount(m.Balance)
}

func (s *Store) SaveBalances(ctx context.Context, updates []account.BalanceUpdate) error {
	writes := make([]mongo.WriteModel, len(updates))
	for i, u := range updates {
		writes[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.Owner.String()}).
			SetUpdate(bson.M{"$set": bson.M{"balance": u.Balance.String()}}).
			SetUpsert(true)
	}
	_, err := s.db.Collection(colAccounts).
		BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("streampay/mongo: save balances: %w", err)
	}
	return nil
}

func (s *Store) GetBonus(ctx context.Context, owner id.AccountID) (*account.DailyBonus, error) {
	var m bonusModel
	err := s.db.Collection(colBonuses).
		FindOne(ctx, bson.M{"_id": owner.String()}).Decode(&m)
	if isNoDocuments(err) {
		return nil, nil //nolint:nilnil // absence, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: get bonus: %w", err)
	}

	amount, err := types.ParseAmount(m.Amount)
	if err != nil {
		return nil, err
	}
	return &account.DailyBonus{Amount: amount, LastClaim: types.Timestamp(m.LastClaim)}, nil
}

func (s *Store) SaveBonusClaim(ctx context.Context, owner id.AccountID, bonus *account.DailyBonus, balance types.Amount) error {
	_, err := s.db.Collection(colBonuses).UpdateOne(ctx,
		bson.M{"_id": owner.String()},
		bson.M{"$set": bson.M{
			"amount":     bonus.Amount.String(),
			"last_claim": int64(bonus.LastClaim),
		}},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("streampay/mongo: save bonus: %w", err)
	}

	_, err = s.db.Collection(colAccounts).UpdateOne(ctx,
		bson.M{"_id": owner.String()},
		bson.M{"$set": bson.M{"balance": balance.String()}},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("streampay/mongo: save bonus balance: %w", err)
	}
	return nil
}

func (s *Store) TotalSupply(ctx context.Context) (types.Amount, error) {
	var m supplyModel
	err := s.db.Collection(colRegisters).
		FindOne(ctx, bson.M{"_id": regTotalSupply}).Decode(&m)
	if isNoDocuments(err) {
		return types.ZeroAmount, nil
	}
	if err != nil {
		return types.ZeroAmount, fmt.Errorf("streampay/mongo: total supply: %w", err)
	}
	return types.ParseAmount(m.Amount)
}

func (s *Store) SetTotalSupply(ctx context.Context, supply types.Amount) error {
	_, err := s.db.Collection(colRegisters).UpdateOne(ctx,
		bson.M{"_id": regTotalSupply},
		bson.M{"$set": bson.M{"amount": supply.String()}},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("streampay/mongo: set total supply: %w", err)
	}
	return nil
}

// ==================== Stream Store ====================

func (s *Store) CreateStream(ctx context.Context, st *stream.Stream) (uint64, error) {
	// Atomic counter bump returns the ID being assigned. An $inc upsert
	// on a missing document creates it holding 1, so first use works
	// with or without a prior Migrate.
	var counter counterModel
	err := s.db.Collection(colRegisters).FindOneAndUpdate(ctx,
		bson.M{"_id": regNextStreamID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(true)).
		Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("streampay/mongo: next stream id: %w", err)
	}

	streamID := uint64(counter.Seq)
	st.ID = streamID
	if _, err := s.db.Collection(colStreams).InsertOne(ctx, toStreamModel(st)); err != nil {
		return 0, fmt.Errorf("streampay/mongo: create stream: %w", err)
	}
	return streamID, nil
}

func (s *Store) GetStream(ctx context.Context, streamID uint64) (*stream.Stream, error) {
	var m streamModel
	err := s.db.Collection(colStreams).
		FindOne(ctx, bson.M{"_id": int64(streamID)}).Decode(&m)
	if isNoDocuments(err) {
		return nil, streampay.ErrStreamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: get stream: %w", err)
	}
	return fromStreamModel(&m)
}

func (s *Store) UpdateStream(ctx context.Context, st *stream.Stream) error {
	m := toStreamModel(st)
	res, err := s.db.Collection(colStreams).ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("streampay/mongo: update stream: %w", err)
	}
	if res.MatchedCount == 0 {
		return streampay.ErrStreamNotFound
	}
	return nil
}

func (s *Store) StreamIDsBySender(ctx context.Context, sender id.AccountID) ([]uint64, error) {
	return s.streamIDsFor(ctx, bson.M{"sender": sender.String()})
}

func (s *Store) StreamIDsByRecipient(ctx context.Context, recipient id.AccountID) ([]uint64, error) {
	return s.streamIDsFor(ctx, bson.M{"recipient": recipient.String()})
}

func (s *Store) streamIDsFor(ctx context.Context, filter bson.M) ([]uint64, error) {
	cur, err := s.db.Collection(colStreams).Find(ctx, filter,
		options.Find().
			SetProjection(bson.M{"_id": 1}).
			SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: stream ids: %w", err)
	}
	defer cur.Close(ctx)

	ids := make([]uint64, 0)
	for cur.Next(ctx) {
		var doc struct {
			ID int64 `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("streampay/mongo: stream ids: %w", err)
		}
		ids = append(ids, uint64(doc.ID))
	}
	return ids, cur.Err()
}

func (s *Store) ListAllStreams(ctx context.Context) ([]*stream.Stream, error) {
	cur, err := s.db.Collection(colStreams).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: list streams: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*stream.Stream, 0)
	for cur.Next(ctx) {
		var m streamModel
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("streampay/mongo: list streams: %w", err)
		}
		st, err := fromStreamModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, cur.Err()
}

// ==================== Journal Store ====================

func (s *Store) AppendJournal(ctx context.Context, entries []*journal.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]any, len(entries))
	for i, e := range entries {
		docs[i] = toJournalModel(e)
	}
	_, err := s.db.Collection(colJournal).
		InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return fmt.Errorf("streampay/mongo: append journal: %w", err)
	}
	return nil
}

func (s *Store) QueryJournal(ctx context.Context, opts journal.QueryOpts) ([]*journal.Entry, error) {
	filter := bson.M{}
	if opts.Kind != "" {
		filter["kind"] = string(opts.Kind)
	}
	if !opts.Owner.IsNil() {
		filter["owner"] = opts.Owner.String()
	}
	if opts.StreamID != 0 {
		filter["stream_id"] = int64(opts.StreamID)
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "ts", Value: 1}})
	if opts.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := s.db.Collection(colJournal).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: query journal: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*journal.Entry, 0)
	for cur.Next(ctx) {
		var m journalModel
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("streampay/mongo: query journal: %w", err)
		}
		e, err := fromJournalModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, cur.Err()
}
