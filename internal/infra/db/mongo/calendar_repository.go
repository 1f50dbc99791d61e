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
	domainavailability "tradeboard/internal/domain/availability"
	"tradeboard/internal/domain/shared/daterange"
)

const calendarsCollection = "calendars"

type CalendarRepository struct {
	col *mongo.Collection
}

func NewCalendarRepository(db *mongo.Database) *CalendarRepository {
	return &CalendarRepository{col: db.Collection(calendarsCollection)}
}

func (r *CalendarRepository) Calendar(ctx context.Context, id domainannouncements.ID) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainavailability.ErrCalendarNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

// Save upserts guarded by the loaded version. A stale version either misses
// the filter and collides on _id, or conflicts inside the transaction.
func (r *CalendarRepository) Save(ctx context.Context, cal *domainavailability.Calendar) error {
	doc := newCalendarDocument(cal)
	filter := bson.M{"_id": doc.ID, "version": cal.Version}
	doc.Version = cal.Version + 1
	_, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if isConflict(err) {
			return domainavailability.ErrConcurrentUpdate
		}
		return err
	}
	cal.Version = doc.Version
	return nil
}

func (r *CalendarRepository) Delete(ctx context.Context, id domainannouncements.ID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}

type calendarDocument struct {
	ID        string    `bson:"_id"`
	Available []string  `bson:"available_dates"`
	Rented    []string  `bson:"rented_dates"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func newCalendarDocument(cal *domainavailability.Calendar) calendarDocument {
	return calendarDocument{
		ID:        string(cal.AnnouncementID),
		Available: cal.Available.Strings(),
		Rented:    cal.Rented.Strings(),
		UpdatedAt: time.Now().UTC(),
	}
}

func (d calendarDocument) toDomain() (*domainavailability.Calendar, error) {
	available, err := daterange.ParseSet(d.Available)
	if err != nil {
		return nil, fmt.Errorf("mongo: calendar %s: %w", d.ID, err)
	}
	rented, err := daterange.ParseSet(d.Rented)
	if err != nil {
		return nil, fmt.Errorf("mongo: calendar %s: %w", d.ID, err)
	}
	return &domainavailability.Calendar{
		AnnouncementID: domainannouncements.ID(d.ID),
		Available:      available,
		Rented:         rented,
		Version:        d.Version,
	}, nil
}

var _ domainavailability.Repository = (*CalendarRepository)(nil)
