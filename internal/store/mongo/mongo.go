// Package mongo is the MongoDB store backend. Month filtering is pushed
// down as an anchored prefix regex on the date field so listing a month
// never scans the whole collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mydash/internal/core"
	"mydash/internal/store"
)

type Store struct {
	client    *mongo.Client
	expenses  *mongo.Collection
	workouts  *mongo.Collection
	drinkLogs *mongo.Collection
	todos     *mongo.Collection
	users     *mongo.Collection
	snapshots *mongo.Collection
}

func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:    client,
		expenses:  db.Collection("expenses"),
		workouts:  db.Collection("workouts"),
		drinkLogs: db.Collection("drink_logs"),
		todos:     db.Collection("todos"),
		users:     db.Collection("users"),
		snapshots: db.Collection("snapshots"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	dateIdx := mongo.IndexModel{Keys: bson.D{{Key: "date", Value: 1}}}
	for _, coll := range []*mongo.Collection{s.expenses, s.workouts} {
		if _, err := coll.Indexes().CreateOne(ctx, dateIdx); err != nil {
			return fmt.Errorf("create date index on %s: %w", coll.Name(), err)
		}
	}
	// One drink log per calendar day; the upsert depends on this.
	uniqueDate := mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.drinkLogs.Indexes().CreateOne(ctx, uniqueDate); err != nil {
		return fmt.Errorf("create unique date index on drink_logs: %w", err)
	}
	uniqueEmail := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.users.Indexes().CreateOne(ctx, uniqueEmail); err != nil {
		return fmt.Errorf("create unique email index on users: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// monthFilter anchors the key at the start of the date string. regexp.QuoteMeta
// is unnecessary: month keys are validated digits-and-dash before they get here.
func monthFilter(monthKey string) bson.M {
	if monthKey == "" {
		return bson.M{}
	}
	return bson.M{"date": bson.M{"$regex": "^" + monthKey}}
}

// Document shapes. Amounts travel as strings to keep decimal values exact.

type expenseDoc struct {
	ID          string `bson:"_id"`
	Date        string `bson:"date"`
	Amount      string `bson:"amount"`
	Category    string `bson:"category"`
	SubCategory string `bson:"subCategory,omitempty"`
	Type        string `bson:"type,omitempty"`
	Note        string `bson:"note,omitempty"`
}

func toExpenseDoc(e core.Expense) expenseDoc {
	return expenseDoc{
		ID:          e.ID,
		Date:        e.Date,
		Amount:      e.Amount.String(),
		Category:    e.Category,
		SubCategory: e.SubCategory,
		Type:        e.Type,
		Note:        e.Note,
	}
}

func (d expenseDoc) toCore() core.Expense {
	amount, err := core.ParseAmount(d.Amount)
	if err != nil {
		amount = core.Amount{}
	}
	return core.Expense{
		ID:          d.ID,
		Date:        d.Date,
		Amount:      amount,
		Category:    d.Category,
		SubCategory: d.SubCategory,
		Type:        d.Type,
		Note:        d.Note,
	}
}

type workoutDoc struct {
	ID          string   `bson:"_id"`
	Date        string   `bson:"date"`
	WorkoutType string   `bson:"workoutType"`
	Intensity   int      `bson:"intensity"`
	Weight      *float64 `bson:"weight,omitempty"`
	BodyFat     *float64 `bson:"bodyFat,omitempty"`
	Feel        string   `bson:"feel,omitempty"`
	Drink       bool     `bson:"drink"`
	Note        string   `bson:"note,omitempty"`
}

func toWorkoutDoc(w core.Workout) workoutDoc {
	return workoutDoc(w)
}

func (d workoutDoc) toCore() core.Workout {
	return core.Workout(d)
}

type drinkLogDoc struct {
	ID            string   `bson:"_id"`
	Date          string   `bson:"date"`
	Drank         bool     `bson:"drank"`
	Name          string   `bson:"name,omitempty"`
	Level         int      `bson:"level"`
	DurationHours *float64 `bson:"durationHours,omitempty"`
	Reasons       []string `bson:"reasons,omitempty"`
	OtherReason   string   `bson:"otherReason,omitempty"`
	Venue         string   `bson:"venue,omitempty"`
	StartTime     string   `bson:"startTime,omitempty"`
	Enjoyment     *int     `bson:"enjoyment,omitempty"`
	Regret        string   `bson:"regret,omitempty"`
	WouldRepeat   *bool    `bson:"wouldRepeat,omitempty"`
	Note          string   `bson:"note,omitempty"`
}

func toDrinkLogDoc(d core.DrinkLog) drinkLogDoc {
	return drinkLogDoc(d)
}

func (d drinkLogDoc) toCore() core.DrinkLog {
	return core.DrinkLog(d)
}

type todoDoc struct {
	ID        string    `bson:"_id"`
	Text      string    `bson:"text"`
	Done      bool      `bson:"done"`
	CreatedAt time.Time `bson:"createdAt"`
}

type userDoc struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	Name         string `bson:"name,omitempty"`
	PasswordHash string `bson:"passwordHash"`
	Role         string `bson:"role"`
	IsActive     bool   `bson:"isActive"`
}

type snapshotDoc struct {
	ID       string    `bson:"_id"`
	MonthKey string    `bson:"monthKey"`
	Tier     string    `bson:"tier"`
	TakenAt  time.Time `bson:"takenAt"`
	Data     []byte    `bson:"data"`
}

// Expenses

func (s *Store) ListExpenses(ctx context.Context, monthKey string) ([]core.Expense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.expenses.Find(ctx, monthFilter(monthKey), opts)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.Expense
	for cursor.Next(ctx) {
		var doc expenseDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode expense: %w", err)
		}
		out = append(out, doc.toCore())
	}
	return out, cursor.Err()
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	if _, err := s.expenses.InsertOne(ctx, toExpenseDoc(e)); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, id string, e core.Expense) (core.Expense, error) {
	e.ID = id
	res, err := s.expenses.ReplaceOne(ctx, bson.M{"_id": id}, toExpenseDoc(e))
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.Expense{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.expenses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Workouts

func (s *Store) ListWorkouts(ctx context.Context, monthKey string) ([]core.Workout, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.workouts.Find(ctx, monthFilter(monthKey), opts)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.Workout
	for cursor.Next(ctx) {
		var doc workoutDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode workout: %w", err)
		}
		out = append(out, doc.toCore())
	}
	return out, cursor.Err()
}

func (s *Store) CreateWorkout(ctx context.Context, w core.Workout) (core.Workout, error) {
	w.ID = uuid.NewString()
	if _, err := s.workouts.InsertOne(ctx, toWorkoutDoc(w)); err != nil {
		return core.Workout{}, fmt.Errorf("create workout: %w", err)
	}
	return w, nil
}

func (s *Store) UpdateWorkout(ctx context.Context, id string, w core.Workout) (core.Workout, error) {
	w.ID = id
	res, err := s.workouts.ReplaceOne(ctx, bson.M{"_id": id}, toWorkoutDoc(w))
	if err != nil {
		return core.Workout{}, fmt.Errorf("update workout: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.Workout{}, store.ErrNotFound
	}
	return w, nil
}

func (s *Store) DeleteWorkout(ctx context.Context, id string) error {
	res, err := s.workouts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Drink logs

func (s *Store) ListDrinkLogs(ctx context.Context, monthKey string) ([]core.DrinkLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.drinkLogs.Find(ctx, monthFilter(monthKey), opts)
	if err != nil {
		return nil, fmt.Errorf("list drink logs: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.DrinkLog
	for cursor.Next(ctx) {
		var doc drinkLogDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode drink log: %w", err)
		}
		out = append(out, doc.toCore())
	}
	return out, cursor.Err()
}

// UpsertDrinkLog replaces the log for the record's date or creates one,
// atomically against the unique date index. The existing _id survives an
// update; $setOnInsert supplies a fresh one only when inserting.
func (s *Store) UpsertDrinkLog(ctx context.Context, d core.DrinkLog) (core.DrinkLog, error) {
	doc := toDrinkLogDoc(d)
	update := bson.M{
		"$set": bson.M{
			"drank":         doc.Drank,
			"name":          doc.Name,
			"level":         doc.Level,
			"durationHours": doc.DurationHours,
			"reasons":       doc.Reasons,
			"otherReason":   doc.OtherReason,
			"venue":         doc.Venue,
			"startTime":     doc.StartTime,
			"enjoyment":     doc.Enjoyment,
			"regret":        doc.Regret,
			"wouldRepeat":   doc.WouldRepeat,
			"note":          doc.Note,
		},
		"$setOnInsert": bson.M{"_id": uuid.NewString(), "date": doc.Date},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved drinkLogDoc
	err := s.drinkLogs.FindOneAndUpdate(ctx, bson.M{"date": d.Date}, update, opts).Decode(&saved)
	if err != nil {
		return core.DrinkLog{}, fmt.Errorf("upsert drink log: %w", err)
	}
	return saved.toCore(), nil
}

func (s *Store) UpdateDrinkLog(ctx context.Context, id string, d core.DrinkLog) (core.DrinkLog, error) {
	d.ID = id
	res, err := s.drinkLogs.ReplaceOne(ctx, bson.M{"_id": id}, toDrinkLogDoc(d))
	if err != nil {
		return core.DrinkLog{}, fmt.Errorf("update drink log: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.DrinkLog{}, store.ErrNotFound
	}
	return d, nil
}

func (s *Store) DeleteDrinkLog(ctx context.Context, id string) error {
	res, err := s.drinkLogs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete drink log: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Todos

func (s *Store) ListTodos(ctx context.Context) ([]core.Todo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.todos.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.Todo
	for cursor.Next(ctx) {
		var doc todoDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode todo: %w", err)
		}
		out = append(out, core.Todo(doc))
	}
	return out, cursor.Err()
}

func (s *Store) CreateTodo(ctx context.Context, td core.Todo) (core.Todo, error) {
	td.ID = uuid.NewString()
	if td.CreatedAt.IsZero() {
		td.CreatedAt = time.Now()
	}
	if _, err := s.todos.InsertOne(ctx, todoDoc(td)); err != nil {
		return core.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return td, nil
}

func (s *Store) UpdateTodo(ctx context.Context, id string, td core.Todo) (core.Todo, error) {
	res, err := s.todos.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"text": td.Text, "done": td.Done}})
	if err != nil {
		return core.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.Todo{}, store.ErrNotFound
	}
	td.ID = id
	return td, nil
}

func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	res, err := s.todos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Users

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, bson.M{"email": strings.ToLower(email), "isActive": true}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return core.User(doc), nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(u.Email)
	if _, err := s.users.InsertOne(ctx, userDoc(u)); err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Snapshots

func snapshotID(monthKey, tier string) string {
	return monthKey + "|" + tier
}

func (s *Store) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now()
	}
	doc := snapshotDoc{
		ID:       snapshotID(snap.MonthKey, snap.Tier),
		MonthKey: snap.MonthKey,
		Tier:     snap.Tier,
		TakenAt:  snap.TakenAt,
		Data:     snap.Data,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.snapshots.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, monthKey, tier string) (store.Snapshot, error) {
	var doc snapshotDoc
	err := s.snapshots.FindOne(ctx, bson.M{"_id": snapshotID(monthKey, tier)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Snapshot{}, store.ErrNotFound
	}
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	return store.Snapshot{
		MonthKey: doc.MonthKey,
		Tier:     doc.Tier,
		TakenAt:  doc.TakenAt,
		Data:     doc.Data,
	}, nil
}
