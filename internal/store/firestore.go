package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pure-justin/power-to-the-people-sub003/internal/model"
	"github.com/pure-justin/power-to-the-people-sub003/internal/scoring"
)

// FirestoreStore is the Firestore-backed Store, used by deployments already on
// Google Cloud. Award and requeue run inside RunTransaction; Firestore aborts
// the whole transaction if any write fails.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(projectID string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(context.Background(), projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) SaveListing(ctx context.Context, listing model.Listing) error {
	_, err := s.client.Collection("listings").Doc(listing.ID).Set(ctx, listing)
	return err
}

func (s *FirestoreStore) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	doc, err := s.client.Collection("listings").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var listing model.Listing
	if err := doc.DataTo(&listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &listing, nil
}

func (s *FirestoreStore) UpdateListing(ctx context.Context, listing model.Listing) error {
	_, err := s.client.Collection("listings").Doc(listing.ID).Set(ctx, listing)
	return err
}

func (s *FirestoreStore) ListListingsByStatus(ctx context.Context, st model.ListingStatus, limit int) ([]model.Listing, error) {
	query := s.client.Collection("listings").Query
	if st != "" {
		query = query.Where("status", "==", string(st))
	}
	query = query.OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return decodeListingDocs(query.Documents(ctx))
}

func (s *FirestoreStore) ListOpenClosedBefore(ctx context.Context, t time.Time) ([]model.Listing, error) {
	query := s.client.Collection("listings").
		Where("status", "==", string(model.ListingStatusOpen)).
		Where("bid_window_closes_at", "<=", t)
	return decodeListingDocs(query.Documents(ctx))
}

func decodeListingDocs(iter *firestore.DocumentIterator) ([]model.Listing, error) {
	defer iter.Stop()
	var out []model.Listing
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate listings: %w", err)
		}
		var l model.Listing
		if err := doc.DataTo(&l); err != nil {
			return nil, fmt.Errorf("decode listing: %w", err)
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *FirestoreStore) SaveBid(ctx context.Context, bid model.Bid) error {
	_, err := s.client.Collection("bids").Doc(bid.ID).Set(ctx, bid)
	return err
}

func (s *FirestoreStore) GetBid(ctx context.Context, id string) (*model.Bid, error) {
	doc, err := s.client.Collection("bids").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var bid model.Bid
	if err := doc.DataTo(&bid); err != nil {
		return nil, fmt.Errorf("decode bid: %w", err)
	}
	return &bid, nil
}

func (s *FirestoreStore) ListBidsByListing(ctx context.Context, listingID string, st model.BidStatus) ([]model.Bid, error) {
	query := s.client.Collection("bids").Where("listing_id", "==", listingID)
	if st != "" {
		query = query.Where("status", "==", string(st))
	}
	iter := query.OrderBy("submitted_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []model.Bid
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate bids: %w", err)
		}
		var b model.Bid
		if err := doc.DataTo(&b); err != nil {
			return nil, fmt.Errorf("decode bid: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *FirestoreStore) ApplyAward(ctx context.Context, award Award) error {
	listingRef := s.client.Collection("listings").Doc(award.Listing.ID)
	bidRef := s.client.Collection("bids").Doc(award.AcceptedBid.ID)

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		listingDoc, err := tx.Get(listingRef)
		if err != nil {
			return err
		}
		var current model.Listing
		if err := listingDoc.DataTo(&current); err != nil {
			return err
		}
		if current.Status != model.ListingStatusOpen {
			return fmt.Errorf("%w: listing %s is %s", model.ErrFailedPrecondition, current.ID, current.Status)
		}

		bidDoc, err := tx.Get(bidRef)
		if err != nil {
			return err
		}
		var currentBid model.Bid
		if err := bidDoc.DataTo(&currentBid); err != nil {
			return err
		}
		if currentBid.Status != model.BidStatusPending {
			return fmt.Errorf("%w: bid %s is %s", model.ErrFailedPrecondition, currentBid.ID, currentBid.Status)
		}

		siblings, err := tx.Documents(s.client.Collection("bids").
			Where("listing_id", "==", award.Listing.ID).
			Where("status", "==", string(model.BidStatusPending))).GetAll()
		if err != nil {
			return err
		}

		if err := tx.Set(listingRef, award.Listing); err != nil {
			return err
		}
		if err := tx.Set(bidRef, award.AcceptedBid); err != nil {
			return err
		}
		for _, doc := range siblings {
			if doc.Ref.ID == award.AcceptedBid.ID {
				continue
			}
			if err := tx.Update(doc.Ref, []firestore.Update{
				{Path: "status", Value: string(model.BidStatusRejected)},
				{Path: "updated_at", Value: award.Now},
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *FirestoreStore) ApplyRequeue(ctx context.Context, requeue Requeue) error {
	listingRef := s.client.Collection("listings").Doc(requeue.Listing.ID)
	bidRef := s.client.Collection("bids").Doc(requeue.RejectBidID)

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		listingDoc, err := tx.Get(listingRef)
		if err != nil {
			return err
		}
		var current model.Listing
		if err := listingDoc.DataTo(&current); err != nil {
			return err
		}
		if current.Status != model.ListingStatusAssigned {
			return fmt.Errorf("%w: listing %s is %s", model.ErrFailedPrecondition, current.ID, current.Status)
		}

		if err := tx.Set(listingRef, requeue.Listing); err != nil {
			return err
		}
		return tx.Update(bidRef, []firestore.Update{
			{Path: "status", Value: string(model.BidStatusRejected)},
			{Path: "updated_at", Value: requeue.Now},
		})
	})
}

func (s *FirestoreStore) SaveWorker(ctx context.Context, worker model.WorkerProfile) error {
	_, err := s.client.Collection("workers").Doc(worker.ID).Set(ctx, worker)
	return err
}

func (s *FirestoreStore) GetWorker(ctx context.Context, id string) (*model.WorkerProfile, error) {
	doc, err := s.client.Collection("workers").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var w model.WorkerProfile
	if err := doc.DataTo(&w); err != nil {
		return nil, fmt.Errorf("decode worker: %w", err)
	}
	return &w, nil
}

func (s *FirestoreStore) GetWorkers(ctx context.Context, ids []string) (map[string]model.WorkerProfile, error) {
	out := make(map[string]model.WorkerProfile, len(ids))
	for _, id := range ids {
		w, err := s.GetWorker(ctx, id)
		if err != nil {
			return nil, err
		}
		if w != nil {
			out[id] = *w
		}
	}
	return out, nil
}

func (s *FirestoreStore) GetZip(ctx context.Context, postalCode string) (*model.ZipCoordinate, error) {
	doc, err := s.client.Collection("zip_coordinates").Doc(postalCode).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var coord model.ZipCoordinate
	if err := doc.DataTo(&coord); err != nil {
		return nil, fmt.Errorf("decode zip: %w", err)
	}
	return &coord, nil
}

func (s *FirestoreStore) PutZip(ctx context.Context, coord model.ZipCoordinate) error {
	_, err := s.client.Collection("zip_coordinates").Doc(coord.PostalCode).Set(ctx, coord)
	return err
}

func (s *FirestoreStore) GetWeights(ctx context.Context) (*scoring.WeightsConfig, error) {
	doc, err := s.client.Collection("config").Doc("bidding_weights").Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var cfg scoring.WeightsConfig
	if err := doc.DataTo(&cfg); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}
	return &cfg, nil
}

func (s *FirestoreStore) PutWeights(ctx context.Context, cfg scoring.WeightsConfig) error {
	_, err := s.client.Collection("config").Doc("bidding_weights").Set(ctx, cfg)
	return err
}

func (s *FirestoreStore) SaveViolation(ctx context.Context, rec model.SlaViolationRecord) error {
	_, err := s.client.Collection("sla_violations").Doc(rec.ID).Set(ctx, rec)
	return err
}

func (s *FirestoreStore) ListViolationsByWorker(ctx context.Context, workerID string) ([]model.SlaViolationRecord, error) {
	iter := s.client.Collection("sla_violations").
		Where("worker_id", "==", workerID).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var out []model.SlaViolationRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate violations: %w", err)
		}
		var v model.SlaViolationRecord
		if err := doc.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode violation: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *FirestoreStore) Close(ctx context.Context) error {
	_ = ctx
	return s.client.Close()
}
