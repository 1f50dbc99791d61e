package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainannouncements "tradeboard/internal/domain/announcements"
	"tradeboard/internal/domain/shared/money"
)

const announcementsCollection = "announcements"

type AnnouncementRepository struct {
	col *mongo.Collection
}

func NewAnnouncementRepository(db *mongo.Database) *AnnouncementRepository {
	return &AnnouncementRepository{col: db.Collection(announcementsCollection)}
}

func (r *AnnouncementRepository) ByID(ctx context.Context, id domainannouncements.ID) (*domainannouncements.Announcement, error) {
	var doc announcementDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainannouncements.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *AnnouncementRepository) Save(ctx context.Context, a *domainannouncements.Announcement) error {
	doc := newAnnouncementDocument(a)
	doc.Version = a.Version + 1
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return err
	}
	a.Version = doc.Version
	return nil
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id domainannouncements.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainannouncements.ErrNotFound
	}
	return nil
}

type announcementDocument struct {
	ID                 string       `bson:"_id"`
	OwnerID            string       `bson:"owner_id"`
	Kind               string       `bson:"kind"`
	Title              string       `bson:"title"`
	Description        string       `bson:"description,omitempty"`
	Category           string       `bson:"category,omitempty"`
	DailyPrice         *money.Money `bson:"daily_price,omitempty"`
	Deposit            *money.Money `bson:"deposit,omitempty"`
	SalePrice          *money.Money `bson:"sale_price,omitempty"`
	ManualConfirmation bool         `bson:"manual_confirmation"`
	Media              []string     `bson:"media,omitempty"`
	CreatedAt          time.Time    `bson:"created_at"`
	UpdatedAt          time.Time    `bson:"updated_at"`
	Version            int64        `bson:"version"`
}

func newAnnouncementDocument(a *domainannouncements.Announcement) announcementDocument {
	return announcementDocument{
		ID:                 string(a.ID),
		OwnerID:            a.OwnerID,
		Kind:               string(a.Kind),
		Title:              a.Title,
		Description:        a.Description,
		Category:           a.Category,
		DailyPrice:         a.DailyPrice,
		Deposit:            a.Deposit,
		SalePrice:          a.SalePrice,
		ManualConfirmation: a.ManualConfirmation,
		Media:              a.Media,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func (d announcementDocument) toDomain() *domainannouncements.Announcement {
	return &domainannouncements.Announcement{
		ID:                 domainannouncements.ID(d.ID),
		OwnerID:            d.OwnerID,
		Kind:               domainannouncements.Kind(d.Kind),
		Title:              d.Title,
		Description:        d.Description,
		Category:           d.Category,
		DailyPrice:         d.DailyPrice,
		Deposit:            d.Deposit,
		SalePrice:          d.SalePrice,
		ManualConfirmation: d.ManualConfirmation,
		Media:              d.Media,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
		Version:            d.Version,
	}
}

var _ domainannouncements.Repository = (*AnnouncementRepository)(nil)
