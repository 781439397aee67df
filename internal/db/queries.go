package db

import (
	"context"
	"errors"
	"fmt"
	"github.com/apomuden/apomuden/internal/lang"
	"github.com/google/uuid"
	"math"
	"strings"
	"time"
)

// Queries are the typed operations the service runs against a Store.
type Queries struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Queries {
	return &Queries{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (q *Queries) Store() Store {
	return q.store
}

func (q *Queries) CreateUser(ctx context.Context, u User) (User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" {
		return User{}, fmt.Errorf("email is required")
	}
	n, err := q.store.Count(ctx, Users, Where("email", Eq, u.Email))
	if err != nil {
		return User{}, fmt.Errorf("failed to check email: %w", err)
	}
	if n > 0 {
		return User{}, fmt.Errorf("email %s: %w", u.Email, ErrDuplicate)
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.PreferredLanguage == "" {
		u.PreferredLanguage = lang.English
	}
	u.IsActive = true
	u.CreatedAt = q.now()
	u.UpdatedAt = u.CreatedAt

	err = q.store.Insert(ctx, Users, u.ID, u)
	if err != nil {
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (q *Queries) UserByID(ctx context.Context, id string) (User, error) {
	doc, err := q.store.Get(ctx, Users, id)
	if err != nil {
		return User{}, err
	}
	var u User
	err = doc.Decode(&u)
	if err != nil {
		return User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	return u, nil
}

func (q *Queries) UserByEmail(ctx context.Context, email string) (User, error) {
	docs, err := q.store.Find(ctx, Users, Where("email", Eq, strings.ToLower(strings.TrimSpace(email))), FindOptions{Limit: 1})
	if err != nil {
		return User{}, err
	}
	users, err := All[User](docs)
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, ErrNotFound
	}
	return users[0], nil
}

// UpdateProfile changes the fields that are not nil.
func (q *Queries) UpdateProfile(ctx context.Context, id string, fullName *string, preferred *lang.Code) (User, error) {
	u, err := q.UserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if fullName == nil && preferred == nil {
		return u, nil
	}
	if fullName != nil {
		u.FullName = *fullName
	}
	if preferred != nil {
		u.PreferredLanguage = *preferred
	}
	u.UpdatedAt = q.now()

	err = q.store.Put(ctx, Users, u.ID, u)
	if err != nil {
		return User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (q *Queries) CreateHealthQuery(ctx context.Context, h HealthQuery) (HealthQuery, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = q.now()
	}
	err := q.store.Insert(ctx, HealthQueries, h.ID, h)
	if err != nil {
		return HealthQuery{}, fmt.Errorf("failed to create health query: %w", err)
	}
	return h, nil
}

// History pages a user's questions, newest first.
func (q *Queries) History(ctx context.Context, userID string, page, pageSize int64) (Page[HealthQuery], error) {
	return paginate[HealthQuery](ctx, q.store, HealthQueries, Where("user_id", Eq, userID), page, pageSize)
}

func (q *Queries) DeleteHealthQuery(ctx context.Context, userID string, id string) error {
	n, err := q.store.Delete(ctx, HealthQueries, Where("id", Eq, id).And("user_id", Eq, userID))
	if err != nil {
		return fmt.Errorf("failed to delete health query: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) UserStats(ctx context.Context, u User) (UserStats, error) {
	mine := Where("user_id", Eq, u.ID)

	docs, err := q.store.Find(ctx, HealthQueries, mine, FindOptions{})
	if err != nil {
		return UserStats{}, fmt.Errorf("failed to find health queries: %w", err)
	}
	queries, err := All[HealthQuery](docs)
	if err != nil {
		return UserStats{}, err
	}

	recent, err := q.store.Count(ctx, HealthQueries, mine.And("timestamp", Gte, q.now().AddDate(0, 0, -30)))
	if err != nil {
		return UserStats{}, fmt.Errorf("failed to count recent queries: %w", err)
	}

	stats := UserStats{
		TotalQueries:      int64(len(queries)),
		RecentQueries:     recent,
		LanguageBreakdown: map[string]int64{},
		MemberSince:       u.CreatedAt,
	}
	for _, h := range queries {
		stats.LanguageBreakdown[h.QueryLanguage]++
	}
	return stats, nil
}

func (q *Queries) LogQuery(ctx context.Context, l QueryLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = q.now()
	}
	l.Type = TypeQuery
	return q.store.Put(ctx, QueryLogs, l.ID, l)
}

func (q *Queries) LogError(ctx context.Context, l ErrorLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = q.now()
	}
	l.Type = TypeError
	return q.store.Put(ctx, ErrorLogs, l.ID, l)
}

// LogFilter narrows log listings, zero values are ignored.
type LogFilter struct {
	UserID    string
	Start     time.Time
	End       time.Time
	Language  string
	ModelUsed string
}

func (f LogFilter) filter(typ string) Filter {
	filter := Where("type", Eq, typ)
	if f.UserID != "" {
		filter = filter.And("user_id", Eq, f.UserID)
	}
	if !f.Start.IsZero() {
		filter = filter.And("timestamp", Gte, f.Start)
	}
	if !f.End.IsZero() {
		filter = filter.And("timestamp", Lte, f.End)
	}
	if f.Language != "" {
		filter = filter.And("response_data.language", Eq, f.Language)
	}
	if f.ModelUsed != "" {
		filter = filter.And("response_data.model_used", Eq, f.ModelUsed)
	}
	return filter
}

func (q *Queries) QueryLogs(ctx context.Context, f LogFilter, page, pageSize int64) (Page[QueryLog], error) {
	return paginate[QueryLog](ctx, q.store, QueryLogs, f.filter(TypeQuery), page, pageSize)
}

func (q *Queries) ErrorLogs(ctx context.Context, f LogFilter, page, pageSize int64) (Page[ErrorLog], error) {
	return paginate[ErrorLog](ctx, q.store, ErrorLogs, f.filter(TypeError), page, pageSize)
}

// Analytics summarises a user's answered questions: average processing time,
// answers per model and questions per day over the last 7 days.
func (q *Queries) Analytics(ctx context.Context, userID string) (Analytics, error) {
	docs, err := q.store.Find(ctx, QueryLogs, LogFilter{UserID: userID}.filter(TypeQuery), FindOptions{})
	if err != nil {
		return Analytics{}, fmt.Errorf("failed to find query logs: %w", err)
	}
	logs, err := All[QueryLog](docs)
	if err != nil {
		return Analytics{}, err
	}

	a := Analytics{
		ModelUsage:    map[string]int64{},
		DailyActivity: map[string]int64{},
	}
	if len(logs) == 0 {
		return a, nil
	}

	since := q.now().AddDate(0, 0, -7)
	var total float64
	for _, l := range logs {
		total += l.ProcessingTime
		model := l.Response.ModelUsed
		if model == "" {
			model = "unknown"
		}
		a.ModelUsage[model]++
		if !l.Timestamp.Before(since) {
			a.DailyActivity[l.Timestamp.UTC().Format("2006-01-02")]++
		}
	}
	a.AverageProcessingTime = math.Round(total/float64(len(logs))*1000) / 1000
	return a, nil
}

func paginate[T any](ctx context.Context, store Store, collection string, filter Filter, page, pageSize int64) (Page[T], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return Page[T]{}, errors.New("page size must be positive")
	}

	total, err := store.Count(ctx, collection, filter)
	if err != nil {
		return Page[T]{}, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	docs, err := store.Find(ctx, collection, filter, FindOptions{
		Sort:  "timestamp",
		Desc:  true,
		Skip:  (page - 1) * pageSize,
		Limit: pageSize,
	})
	if err != nil {
		return Page[T]{}, fmt.Errorf("failed to find %s: %w", collection, err)
	}
	items, err := All[T](docs)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
