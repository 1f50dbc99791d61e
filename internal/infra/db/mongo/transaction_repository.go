package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainannouncements "tradeboard/internal/domain/announcements"
	"tradeboard/internal/domain/shared/daterange"
	"tradeboard/internal/domain/shared/money"
	domaintransactions "tradeboard/internal/domain/transactions"
)

const transactionsCollection = "transactions"

type TransactionRepository struct {
	col *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{col: db.Collection(transactionsCollection)}
}

func (r *TransactionRepository) ByID(ctx context.Context, id domaintransactions.ID) (*domaintransactions.Transaction, error) {
	var doc transactionDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintransactions.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *TransactionRepository) Save(ctx context.Context, tx *domaintransactions.Transaction) error {
	doc := newTransactionDocument(tx)
	filter := bson.M{"_id": doc.ID, "version": tx.Version}
	doc.Version = tx.Version + 1
	_, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if isConflict(err) {
			return domaintransactions.ErrConcurrentUpdate
		}
		return err
	}
	tx.Version = doc.Version
	return nil
}

func (r *TransactionRepository) ListByParty(ctx context.Context, customerID string) ([]*domaintransactions.Transaction, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"buyer_id": customerID},
		bson.M{"seller_id": customerID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domaintransactions.Transaction
	for cur.Next(ctx) {
		var doc transactionDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		tx, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, cur.Err()
}

type periodDocument struct {
	Start string `bson:"start"`
	End   string `bson:"end"`
}

type transactionDocument struct {
	ID             string          `bson:"_id"`
	AnnouncementID string          `bson:"announcement_id"`
	SellerID       string          `bson:"seller_id"`
	BuyerID        string          `bson:"buyer_id"`
	Kind           string          `bson:"kind"`
	Period         *periodDocument `bson:"period,omitempty"`
	TotalPrice     money.Money     `bson:"total_price"`
	Deposit        *money.Money    `bson:"deposit,omitempty"`
	Status         string          `bson:"status"`
	CreatedAt      time.Time       `bson:"created_at"`
	UpdatedAt      time.Time       `bson:"updated_at"`
	Version        int64           `bson:"version"`
}

func newTransactionDocument(tx *domaintransactions.Transaction) transactionDocument {
	doc := transactionDocument{
		ID:             string(tx.ID),
		AnnouncementID: string(tx.AnnouncementID),
		SellerID:       tx.SellerID,
		BuyerID:        tx.BuyerID,
		Kind:           string(tx.Kind),
		TotalPrice:     tx.TotalPrice,
		Deposit:        tx.Deposit,
		Status:         string(tx.Status),
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
	}
	if tx.Period != nil {
		doc.Period = &periodDocument{Start: tx.Period.Start.String(), End: tx.Period.End.String()}
	}
	return doc
}

func (d transactionDocument) toDomain() (*domaintransactions.Transaction, error) {
	tx := &domaintransactions.Transaction{
		ID:             domaintransactions.ID(d.ID),
		AnnouncementID: domainannouncements.ID(d.AnnouncementID),
		SellerID:       d.SellerID,
		BuyerID:        d.BuyerID,
		Kind:           domainannouncements.Kind(d.Kind),
		TotalPrice:     d.TotalPrice,
		Deposit:        d.Deposit,
		Status:         domaintransactions.Status(d.Status),
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
		Version:        d.Version,
	}
	if d.Period != nil {
		start, err := daterange.Parse(d.Period.Start)
		if err != nil {
			return nil, fmt.Errorf("mongo: transaction %s: %w", d.ID, err)
		}
		end, err := daterange.Parse(d.Period.End)
		if err != nil {
			return nil, fmt.Errorf("mongo: transaction %s: %w", d.ID, err)
		}
		tx.Period = &daterange.Range{Start: start, End: end}
	}
	return tx, nil
}

var _ domaintransactions.Repository = (*TransactionRepository)(nil)
