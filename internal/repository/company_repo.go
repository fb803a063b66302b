package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Werneck0live/cadastro-cnpj/internal/cnpj"
	"github.com/Werneck0live/cadastro-cnpj/internal/models"
	"github.com/Werneck0live/cadastro-cnpj/internal/sentinel"
)

const (
	companiesCollection = "companies"
	countersCollection  = "counters"
	uniqueCNPJIndex     = "uniq_cnpj"
)

// CompanyRepository stores companies in MongoDB. The unique index on "cnpj"
// is the authoritative uniqueness guard; duplicate-key write errors come back
// as sentinel.ErrConflict.
type CompanyRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

func NewCompanyRepository(db *mongo.Database) *CompanyRepository {
	return &CompanyRepository{
		coll:     db.Collection(companiesCollection),
		counters: db.Collection(countersCollection),
		now:      mongoNow,
	}
}

// Mongo keeps millisecond precision; truncating keeps returned and stored
// timestamps equal.
func mongoNow() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func (r *CompanyRepository) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: "cnpj", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetName(uniqueCNPJIndex),
	}
	_, err := r.coll.Indexes().CreateOne(ctx, model)
	if err == nil {
		return nil
	}
	// Se já existir com outra opção, tenta dropar e recriar
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 85 { // IndexOptionsConflict
		if _, dropErr := r.coll.Indexes().DropOne(ctx, uniqueCNPJIndex); dropErr != nil {
			return fmt.Errorf("drop index %s: %w", uniqueCNPJIndex, dropErr)
		}
		_, err = r.coll.Indexes().CreateOne(ctx, model)
	}
	return err
}

// nextID allocates company ids from an atomically incremented counter.
func (r *CompanyRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": companiesCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next company id: %w", err)
	}
	return counter.Seq, nil
}

func (r *CompanyRepository) FindByID(ctx context.Context, id int64) (*models.Company, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *CompanyRepository) FindByCNPJ(ctx context.Context, c cnpj.CNPJ) (*models.Company, error) {
	return r.findOne(ctx, bson.M{"cnpj": c.String()})
}

func (r *CompanyRepository) findOne(ctx context.Context, filter bson.M) (*models.Company, error) {
	var c models.Company
	err := r.coll.FindOne(ctx, filter).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAll pages through companies, newest first.
func (r *CompanyRepository) FindAll(ctx context.Context, limit int64, skip int64) ([]models.Company, error) {
	opts := options.Find().
		SetLimit(limit).
		SetSkip(skip).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	list := []models.Company{}
	for cur.Next(ctx) {
		var c models.Company
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, cur.Err()
}

func (r *CompanyRepository) Save(ctx context.Context, c *models.Company) (*models.Company, error) {
	if c.ID == 0 {
		return r.insert(ctx, c)
	}
	return r.replace(ctx, c)
}

func (r *CompanyRepository) insert(ctx context.Context, c *models.Company) (*models.Company, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}
	doc := *c
	doc.ID = id
	doc.CreatedAt = r.now()
	doc.UpdatedAt = doc.CreatedAt

	if _, err := r.coll.InsertOne(ctx, &doc); err != nil {
		return nil, translateWriteErr(err)
	}
	return &doc, nil
}

// replace overwrites every mutable field; CreatedAt is kept from the caller's
// copy, which was loaded from storage.
func (r *CompanyRepository) replace(ctx context.Context, c *models.Company) (*models.Company, error) {
	doc := *c
	doc.UpdatedAt = r.now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, &doc)
	if err != nil {
		return nil, translateWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return nil, sentinel.ErrNotFound
	}
	return &doc, nil
}

func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func translateWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", sentinel.ErrConflict, err)
	}
	return err
}
