package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
	"github.com/pure-justin/power-to-the-people-sub003/internal/scoring"
)

const mongoOpTimeout = 5 * time.Second

// MongoStore backs the marketplace with MongoDB. The award and requeue writes
// run inside a session transaction so the listing transition and the bid
// status changes commit together or not at all.
type MongoStore struct {
	client     *mongo.Client
	listings   *mongo.Collection
	bids       *mongo.Collection
	workers    *mongo.Collection
	zips       *mongo.Collection
	config     *mongo.Collection
	violations *mongo.Collection
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		client:     client,
		listings:   db.Collection("listings"),
		bids:       db.Collection("bids"),
		workers:    db.Collection("workers"),
		zips:       db.Collection("zip_coordinates"),
		config:     db.Collection("config"),
		violations: db.Collection("sla_violations"),
	}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.listings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "bid_window_closes_at", Value: 1}}},
		{Keys: bson.D{{Key: "posted_by", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return err
	}
	_, err = s.bids.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "submitted_at", Value: 1}}},
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = s.zips.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "postal_code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.violations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "worker_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (s *MongoStore) SaveListing(ctx context.Context, listing model.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()
	_, err := s.listings.InsertOne(ctx, listing)
	return err
}

func (s *MongoStore) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var listing model.Listing
	err := s.listings.FindOne(ctx, bson.M{"id": id}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

func (s *MongoStore) UpdateListing(ctx context.Context, listing model.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	result, err := s.listings.ReplaceOne(ctx, bson.M{"id": listing.ID}, listing)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: listing %s", model.ErrNotFound, listing.ID)
	}
	return nil
}

func (s *MongoStore) ListListingsByStatus(ctx context.Context, status model.ListingStatus, limit int) ([]model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.decodeListings(ctx, filter, opts)
}

func (s *MongoStore) ListOpenClosedBefore(ctx context.Context, t time.Time) ([]model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	filter := bson.M{
		"status":               model.ListingStatusOpen,
		"bid_window_closes_at": bson.M{"$lte": t},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return s.decodeListings(ctx, filter, opts)
}

func (s *MongoStore) decodeListings(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Listing, error) {
	cur, err := s.listings.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []model.Listing
	for cur.Next(ctx) {
		var l model.Listing
		if err := cur.Decode(&l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, cur.Err()
}

func (s *MongoStore) SaveBid(ctx context.Context, bid model.Bid) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()
	_, err := s.bids.InsertOne(ctx, bid)
	return err
}

func (s *MongoStore) GetBid(ctx context.Context, id string) (*model.Bid, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var bid model.Bid
	err := s.bids.FindOne(ctx, bson.M{"id": id}).Decode(&bid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &bid, nil
}

func (s *MongoStore) ListBidsByListing(ctx context.Context, listingID string, status model.BidStatus) ([]model.Bid, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	filter := bson.M{"listing_id": listingID}
	if status != "" {
		filter["status"] = status
	}
	cur, err := s.bids.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []model.Bid
	for cur.Next(ctx) {
		var b model.Bid
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, cur.Err()
}

// ApplyAward commits the accept transition in one transaction. The status
// filters double as precondition checks: a concurrent accept that already
// moved the listing off OPEN makes the replace match nothing, and the whole
// transaction aborts with ErrFailedPrecondition.
func (s *MongoStore) ApplyAward(ctx context.Context, award Award) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", model.ErrInternal, err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := s.listings.ReplaceOne(sc,
			bson.M{"id": award.Listing.ID, "status": model.ListingStatusOpen},
			award.Listing)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, fmt.Errorf("%w: listing %s is not open", model.ErrFailedPrecondition, award.Listing.ID)
		}

		res, err = s.bids.ReplaceOne(sc,
			bson.M{"id": award.AcceptedBid.ID, "status": model.BidStatusPending},
			award.AcceptedBid)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, fmt.Errorf("%w: bid %s is not pending", model.ErrFailedPrecondition, award.AcceptedBid.ID)
		}

		_, err = s.bids.UpdateMany(sc,
			bson.M{
				"listing_id": award.Listing.ID,
				"status":     model.BidStatusPending,
				"id":         bson.M{"$ne": award.AcceptedBid.ID},
			},
			bson.M{"$set": bson.M{"status": model.BidStatusRejected, "updated_at": award.Now}})
		return nil, err
	})
	return err
}

func (s *MongoStore) ApplyRequeue(ctx context.Context, requeue Requeue) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", model.ErrInternal, err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := s.listings.ReplaceOne(sc,
			bson.M{"id": requeue.Listing.ID, "status": model.ListingStatusAssigned},
			requeue.Listing)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, fmt.Errorf("%w: listing %s is not assigned", model.ErrFailedPrecondition, requeue.Listing.ID)
		}

		_, err = s.bids.UpdateOne(sc,
			bson.M{"id": requeue.RejectBidID, "status": model.BidStatusAccepted},
			bson.M{"$set": bson.M{"status": model.BidStatusRejected, "updated_at": requeue.Now}})
		return nil, err
	})
	return err
}

func (s *MongoStore) SaveWorker(ctx context.Context, worker model.WorkerProfile) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	_, err := s.workers.ReplaceOne(ctx, bson.M{"id": worker.ID}, worker, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) GetWorker(ctx context.Context, id string) (*model.WorkerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var worker model.WorkerProfile
	err := s.workers.FindOne(ctx, bson.M{"id": id}).Decode(&worker)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &worker, nil
}

func (s *MongoStore) GetWorkers(ctx context.Context, ids []string) (map[string]model.WorkerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	cur, err := s.workers.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	out := make(map[string]model.WorkerProfile, len(ids))
	for cur.Next(ctx) {
		var w model.WorkerProfile
		if err := cur.Decode(&w); err != nil {
			return nil, err
		}
		out[w.ID] = w
	}
	return out, cur.Err()
}

func (s *MongoStore) GetZip(ctx context.Context, postalCode string) (*model.ZipCoordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var coord model.ZipCoordinate
	err := s.zips.FindOne(ctx, bson.M{"postal_code": postalCode}).Decode(&coord)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &coord, nil
}

func (s *MongoStore) PutZip(ctx context.Context, coord model.ZipCoordinate) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	_, err := s.zips.ReplaceOne(ctx, bson.M{"postal_code": coord.PostalCode}, coord, options.Replace().SetUpsert(true))
	return err
}

type weightsDoc struct {
	Key     string                `bson:"key"`
	Weights scoring.WeightsConfig `bson:"weights"`
}

const weightsKey = "bidding_weights"

func (s *MongoStore) GetWeights(ctx context.Context) (*scoring.WeightsConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var doc weightsDoc
	err := s.config.FindOne(ctx, bson.M{"key": weightsKey}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc.Weights, nil
}

func (s *MongoStore) PutWeights(ctx context.Context, cfg scoring.WeightsConfig) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	_, err := s.config.ReplaceOne(ctx, bson.M{"key": weightsKey},
		weightsDoc{Key: weightsKey, Weights: cfg}, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) SaveViolation(ctx context.Context, rec model.SlaViolationRecord) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()
	_, err := s.violations.InsertOne(ctx, rec)
	return err
}

func (s *MongoStore) ListViolationsByWorker(ctx context.Context, workerID string) ([]model.SlaViolationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	cur, err := s.violations.Find(ctx, bson.M{"worker_id": workerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []model.SlaViolationRecord
	for cur.Next(ctx) {
		var v model.SlaViolationRecord
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
