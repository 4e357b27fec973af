package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/database"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

// Mongo is the default durable store. Owner references are stored as the
// hex string of the user's ObjectID.
type Mongo struct {
	db       *mongo.Database
	users    *mongo.Collection
	meals    *mongo.Collection
	progress *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		db:       db,
		users:    db.Collection("users"),
		meals:    db.Collection("meals"),
		progress: db.Collection("progress"),
	}
}

type userDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	models.User `bson:",inline"`
}

func (d userDoc) model() *models.User {
	u := d.User
	u.ID = d.ID.Hex()
	return &u
}

type mealDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	models.Meal `bson:",inline"`
}

func (d mealDoc) model() models.Meal {
	m := d.Meal
	m.ID = d.ID.Hex()
	if m.Micronutrients == nil {
		m.Micronutrients = map[string]float64{}
	}
	if m.FoodItems == nil {
		m.FoodItems = []string{}
	}
	if m.Recommendations == nil {
		m.Recommendations = []string{}
	}
	return m
}

type progressDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	models.Progress `bson:",inline"`
}

func (d progressDoc) model() models.Progress {
	p := d.Progress
	p.ID = d.ID.Hex()
	return p
}

func (s *Mongo) Migrate(ctx context.Context) error {
	return mongoErr(database.EnsureMongoIndexes(ctx, s.db))
}

func (s *Mongo) Ping(ctx context.Context) error {
	return mongoErr(s.db.Client().Ping(ctx, nil))
}

func (s *Mongo) CreateUser(ctx context.Context, u *models.User) error {
	// The unique index is the authority; this check only gives the common
	// case a clean error before the insert.
	count, err := s.users.CountDocuments(ctx, bson.M{"email": u.Email})
	if err != nil {
		return mongoErr(err)
	}
	if count > 0 {
		return apperr.Conflict("Email already in use")
	}

	doc := userDoc{ID: primitive.NewObjectID(), User: *u}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("Email already in use")
		}
		return mongoErr(err)
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (s *Mongo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return nil, mongoErrNotFound(err, "User not found")
	}
	return doc.model(), nil
}

func (s *Mongo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("User not found")
	}
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoErrNotFound(err, "User not found")
	}
	return doc.model(), nil
}

func (s *Mongo) UpdateUser(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("User not found")
	}

	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Weight != nil {
		set["weight"] = *update.Weight
	}
	if update.Height != nil {
		set["height"] = *update.Height
	}
	if update.Age != nil {
		set["age"] = *update.Age
	}
	if update.Goal != nil {
		set["goal"] = *update.Goal
	}
	if update.DailyCalorieTarget != nil {
		set["daily_calorie_target"] = *update.DailyCalorieTarget
	}
	if update.DailyWaterTarget != nil {
		set["daily_water_target"] = *update.DailyWaterTarget
	}
	if len(set) == 0 {
		return s.GetUserByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	if err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, mongoErrNotFound(err, "User not found")
	}
	return doc.model(), nil
}

func (s *Mongo) CreateMeal(ctx context.Context, m *models.Meal) error {
	doc := mealDoc{ID: primitive.NewObjectID(), Meal: *m}
	if _, err := s.meals.InsertOne(ctx, doc); err != nil {
		return mongoErr(err)
	}
	m.ID = doc.ID.Hex()
	return nil
}

func (s *Mongo) ListMeals(ctx context.Context, userID string, filter models.MealFilter) ([]models.Meal, error) {
	query := bson.M{"user_id": userID}
	if filter.MealType != "" {
		query["meal_type"] = filter.MealType
	}
	created := bson.M{}
	if !filter.From.IsZero() {
		created["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		created["$lte"] = filter.To
	}
	if len(created) > 0 {
		query["created_at"] = created
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.meals.Find(ctx, query, opts)
	if err != nil {
		return nil, mongoErr(err)
	}
	defer cursor.Close(ctx)

	meals := make([]models.Meal, 0)
	for cursor.Next(ctx) {
		var doc mealDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, mongoErr(err)
		}
		meals = append(meals, doc.model())
	}
	if err := cursor.Err(); err != nil {
		return nil, mongoErr(err)
	}
	return meals, nil
}

func (s *Mongo) UpdateMeal(ctx context.Context, userID, mealID string, patch models.MealPatch) (*models.Meal, error) {
	oid, err := primitive.ObjectIDFromHex(mealID)
	if err != nil {
		return nil, apperr.NotFound("Meal not found")
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.ImageURL != nil {
		set["image_url"] = *patch.ImageURL
	}
	if patch.MealType != nil {
		set["meal_type"] = *patch.MealType
	}
	if patch.FoodItems != nil {
		set["food_items"] = *patch.FoodItems
	}
	if patch.Calories != nil {
		set["calories"] = *patch.Calories
	}
	if patch.Macros != nil {
		set["macros"] = *patch.Macros
	}
	if patch.Micronutrients != nil {
		set["micronutrients"] = *patch.Micronutrients
	}
	if patch.HealthScore != nil {
		set["health_score"] = *patch.HealthScore
	}
	if patch.Recommendations != nil {
		set["recommendations"] = *patch.Recommendations
	}
	if patch.IsAIAnalyzed != nil {
		set["is_ai_analyzed"] = *patch.IsAIAnalyzed
	}

	owned := bson.M{"_id": oid, "user_id": userID}
	var doc mealDoc
	if len(set) == 0 {
		err = s.meals.FindOne(ctx, owned).Decode(&doc)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = s.meals.FindOneAndUpdate(ctx, owned, bson.M{"$set": set}, opts).Decode(&doc)
	}
	if err != nil {
		return nil, mongoErrNotFound(err, "Meal not found")
	}
	m := doc.model()
	return &m, nil
}

func (s *Mongo) DeleteMeal(ctx context.Context, userID, mealID string) error {
	oid, err := primitive.ObjectIDFromHex(mealID)
	if err != nil {
		return apperr.NotFound("Meal not found")
	}
	res, err := s.meals.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return mongoErr(err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Meal not found")
	}
	return nil
}

func (s *Mongo) CreateProgress(ctx context.Context, p *models.Progress) error {
	doc := progressDoc{ID: primitive.NewObjectID(), Progress: *p}
	if _, err := s.progress.InsertOne(ctx, doc); err != nil {
		return mongoErr(err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (s *Mongo) ListProgress(ctx context.Context, userID string, limit int) ([]models.Progress, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.progress.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, mongoErr(err)
	}
	defer cursor.Close(ctx)

	var docs []progressDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mongoErr(err)
	}
	entries := make([]models.Progress, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, d.model())
	}
	return entries, nil
}

// mongoErr classifies a driver error. Anything that says the server could not
// be reached or answered in time is unavailable; the rest is internal.
func mongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return apperr.Wrap(apperr.KindConflict, err, "duplicate key")
	case isMongoUnavailable(err):
		return apperr.Unavailable(err)
	default:
		return apperr.Wrap(apperr.KindInternal, err, "mongo")
	}
}

func mongoErrNotFound(err error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(msg)
	}
	return mongoErr(err)
}

func isMongoUnavailable(err error) bool {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	var sse topology.ServerSelectionError
	return errors.As(err, &sse) || errors.Is(err, topology.ErrTopologyClosed)
}
