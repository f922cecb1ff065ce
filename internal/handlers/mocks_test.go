package handlers

import (
	"context"
	"errors"
	"time"

	"brandforge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// In-memory store implementations for handler tests.

// --- AuthTokenStore ---

type memTokenStore struct {
	tokens map[string]*models.AuthToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]*models.AuthToken{}}
}

func (m *memTokenStore) Create(ctx context.Context, token *models.AuthToken) error {
	token.ID = bson.NewObjectID()
	token.CreatedAt = time.Now()
	m.tokens[token.Token] = token
	return nil
}

func (m *memTokenStore) FindByToken(ctx context.Context, token string) (*models.AuthToken, error) {
	return m.tokens[token], nil
}

func (m *memTokenStore) MarkUsed(ctx context.Context, token string) error {
	if t, ok := m.tokens[token]; ok {
		t.IsUsed = true
	}
	return nil
}

func (m *memTokenStore) CountRecentByEmail(ctx context.Context, email string, duration time.Duration) (int64, error) {
	var count int64
	since := time.Now().Add(-duration)
	for _, t := range m.tokens {
		if t.Email == email && t.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// --- ProfileStore ---

type memProfileStore struct {
	profiles map[string]*models.Profile
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{profiles: map[string]*models.Profile{}}
}

func (m *memProfileStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Profile, error) {
	return m.profiles[id.Hex()], nil
}

func (m *memProfileStore) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memProfileStore) FindOrCreate(ctx context.Context, email string) (*models.Profile, error) {
	if p, _ := m.FindByEmail(ctx, email); p != nil {
		return p, nil
	}
	p := &models.Profile{Email: email, Role: models.RoleClient}
	if err := m.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *memProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	if existing, _ := m.FindByEmail(ctx, profile.Email); existing != nil {
		return errors.New("duplicate email")
	}
	profile.ID = bson.NewObjectID()
	if profile.Role == "" {
		profile.Role = models.RoleClient
	}
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()
	m.profiles[profile.ID.Hex()] = profile
	return nil
}

func (m *memProfileStore) List(ctx context.Context) ([]*models.Profile, error) {
	out := []*models.Profile{}
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProfileStore) Update(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	p, ok := m.profiles[id.Hex()]
	if !ok {
		return nil
	}
	if v, ok := fields["name"].(string); ok {
		p.Name = v
	}
	if v, ok := fields["role"].(string); ok {
		p.Role = v
	}
	if v, ok := fields["banned"].(bool); ok {
		p.Banned = v
	}
	if v, ok := fields["stripe_customer_id"].(string); ok {
		p.StripeCustomerID = v
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memProfileStore) SetStripeCustomerID(ctx context.Context, id bson.ObjectID, customerID string) error {
	return m.Update(ctx, id, bson.M{"stripe_customer_id": customerID})
}

func (m *memProfileStore) Delete(ctx context.Context, id bson.ObjectID) error {
	delete(m.profiles, id.Hex())
	return nil
}

func (m *memProfileStore) Count(ctx context.Context) (int64, error) {
	return int64(len(m.profiles)), nil
}

// --- FunnelStore ---

type memFunnelStore struct {
	rows []*models.FunnelResponse
}

func newMemFunnelStore() *memFunnelStore {
	return &memFunnelStore{}
}

func (m *memFunnelStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.FunnelResponse, error) {
	for _, row := range m.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, nil
}

func (m *memFunnelStore) LatestByUser(ctx context.Context, userID bson.ObjectID) (*models.FunnelResponse, error) {
	var latest *models.FunnelResponse
	for _, row := range m.rows {
		if row.UserID != nil && *row.UserID == userID {
			if latest == nil || row.UpdatedAt.After(latest.UpdatedAt) {
				latest = row
			}
		}
	}
	return latest, nil
}

func (m *memFunnelStore) LatestByAnonymous(ctx context.Context, anonymousID string) (*models.FunnelResponse, error) {
	var latest *models.FunnelResponse
	for _, row := range m.rows {
		if row.UserID == nil && row.AnonymousID == anonymousID {
			if latest == nil || row.UpdatedAt.After(latest.UpdatedAt) {
				latest = row
			}
		}
	}
	return latest, nil
}

func (m *memFunnelStore) Upsert(ctx context.Context, owner bson.M, stepData map[string]string, currentStep int, completed bool) (*models.FunnelResponse, error) {
	var existing *models.FunnelResponse
	if userID, ok := owner["user_id"].(bson.ObjectID); ok {
		existing, _ = m.LatestByUser(ctx, userID)
	} else if anonymousID, ok := owner["anonymous_id"].(string); ok {
		existing, _ = m.LatestByAnonymous(ctx, anonymousID)
	}

	if existing == nil {
		existing = &models.FunnelResponse{
			ID:        bson.NewObjectID(),
			CreatedAt: time.Now(),
		}
		if userID, ok := owner["user_id"].(bson.ObjectID); ok {
			existing.UserID = &userID
		}
		if anonymousID, ok := owner["anonymous_id"].(string); ok {
			existing.AnonymousID = anonymousID
		}
		m.rows = append(m.rows, existing)
	}

	existing.StepData = stepData
	existing.CurrentStep = currentStep
	existing.Completed = completed
	existing.UpdatedAt = time.Now()
	return existing, nil
}

func (m *memFunnelStore) ClaimAnonymous(ctx context.Context, anonymousID string, userID bson.ObjectID) (bool, error) {
	row, _ := m.LatestByAnonymous(ctx, anonymousID)
	if row == nil {
		return false, nil
	}
	row.UserID = &userID
	row.UpdatedAt = time.Now()
	return true, nil
}

func (m *memFunnelStore) CountCompleted(ctx context.Context) (int64, error) {
	var count int64
	for _, row := range m.rows {
		if row.Completed {
			count++
		}
	}
	return count, nil
}

// --- ProjectStore ---

type memProjectStore struct {
	projects map[string]*models.Project
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{projects: map[string]*models.Project{}}
}

func (m *memProjectStore) Create(ctx context.Context, project *models.Project) error {
	project.ID = bson.NewObjectID()
	if project.Status == "" {
		project.Status = models.ProjectStatusOnboarding
	}
	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()
	m.projects[project.ID.Hex()] = project
	return nil
}

func (m *memProjectStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Project, error) {
	return m.projects[id.Hex()], nil
}

func (m *memProjectStore) List(ctx context.Context) ([]*models.Project, error) {
	out := []*models.Project{}
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProjectStore) ListByUser(ctx context.Context, userID bson.ObjectID) ([]*models.Project, error) {
	out := []*models.Project{}
	for _, p := range m.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjectStore) Update(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	p, ok := m.projects[id.Hex()]
	if !ok {
		return nil
	}
	if v, ok := fields["plan_name"].(string); ok {
		p.PlanName = v
	}
	if v, ok := fields["status"].(string); ok {
		p.Status = v
	}
	if v, ok := fields["summary"].(string); ok {
		p.Summary = v
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memProjectStore) Delete(ctx context.Context, id bson.ObjectID) error {
	delete(m.projects, id.Hex())
	return nil
}

func (m *memProjectStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, p := range m.projects {
		counts[p.Status]++
	}
	return counts, nil
}

// --- SubscriptionStore ---

type memSubscriptionStore struct {
	subs map[string]*models.Subscription
}

func newMemSubscriptionStore() *memSubscriptionStore {
	return &memSubscriptionStore{subs: map[string]*models.Subscription{}}
}

func (m *memSubscriptionStore) Create(ctx context.Context, sub *models.Subscription) error {
	sub.ID = bson.NewObjectID()
	if sub.Status == "" {
		sub.Status = models.SubscriptionStatusPending
	}
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = time.Now()
	m.subs[sub.ID.Hex()] = sub
	return nil
}

func (m *memSubscriptionStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Subscription, error) {
	return m.subs[id.Hex()], nil
}

func (m *memSubscriptionStore) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	for _, s := range m.subs {
		if s.StripeSubscriptionID == stripeSubscriptionID {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSubscriptionStore) List(ctx context.Context) ([]*models.Subscription, error) {
	out := []*models.Subscription{}
	for _, s := range m.subs {
		out = append(out, s)
	}
	return out, nil
}

func (m *memSubscriptionStore) ListByUser(ctx context.Context, userID bson.ObjectID) ([]*models.Subscription, error) {
	out := []*models.Subscription{}
	for _, s := range m.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSubscriptionStore) applyFields(s *models.Subscription, fields bson.M) {
	if v, ok := fields["status"].(string); ok {
		s.Status = v
	}
	if v, ok := fields["stripe_subscription_id"].(string); ok {
		s.StripeSubscriptionID = v
	}
	if v, ok := fields["price_id"].(string); ok {
		s.PriceID = v
	}
	if v, ok := fields["plan_name"].(string); ok {
		s.PlanName = v
	}
	if v, ok := fields["amount"].(int64); ok {
		s.Amount = v
	}
	if v, ok := fields["next_due_date"].(time.Time); ok {
		s.NextDueDate = &v
	}
	s.UpdatedAt = time.Now()
}

func (m *memSubscriptionStore) Update(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	s, ok := m.subs[id.Hex()]
	if !ok {
		return nil
	}
	m.applyFields(s, fields)
	return nil
}

func (m *memSubscriptionStore) UpdateByStripeID(ctx context.Context, stripeSubscriptionID string, fields bson.M) (bool, error) {
	s, _ := m.FindByStripeID(ctx, stripeSubscriptionID)
	if s == nil {
		return false, nil
	}
	m.applyFields(s, fields)
	return true, nil
}

func (m *memSubscriptionStore) Delete(ctx context.Context, id bson.ObjectID) error {
	delete(m.subs, id.Hex())
	return nil
}

func (m *memSubscriptionStore) CountActive(ctx context.Context) (int64, error) {
	var count int64
	for _, s := range m.subs {
		if s.Status == models.SubscriptionStatusActive {
			count++
		}
	}
	return count, nil
}

func (m *memSubscriptionStore) SumActiveAmount(ctx context.Context) (int64, error) {
	var total int64
	for _, s := range m.subs {
		if s.Status == models.SubscriptionStatusActive {
			total += s.Amount
		}
	}
	return total, nil
}

// --- DocumentStore ---

type memDocumentStore struct {
	docs map[string]*models.InternalDocument
}

func newMemDocumentStore() *memDocumentStore {
	return &memDocumentStore{docs: map[string]*models.InternalDocument{}}
}

func (m *memDocumentStore) Create(ctx context.Context, doc *models.InternalDocument) error {
	doc.ID = bson.NewObjectID()
	doc.Version = 1
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()
	m.docs[doc.ID.Hex()] = doc
	return nil
}

func (m *memDocumentStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.InternalDocument, error) {
	return m.docs[id.Hex()], nil
}

func (m *memDocumentStore) List(ctx context.Context) ([]*models.InternalDocument, error) {
	out := []*models.InternalDocument{}
	for _, d := range m.docs {
		out = append(out, d)
	}
	return out, nil
}

func (m *memDocumentStore) ListByProject(ctx context.Context, projectID bson.ObjectID) ([]*models.InternalDocument, error) {
	out := []*models.InternalDocument{}
	for _, d := range m.docs {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDocumentStore) Update(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	d, ok := m.docs[id.Hex()]
	if !ok {
		return nil
	}
	if v, ok := fields["document_type"].(string); ok {
		d.DocumentType = v
	}
	if v, ok := fields["content"].(string); ok {
		d.Content = v
	}
	d.Version++
	d.UpdatedAt = time.Now()
	return nil
}

func (m *memDocumentStore) Delete(ctx context.Context, id bson.ObjectID) error {
	delete(m.docs, id.Hex())
	return nil
}

// --- TaskStore ---

type memTaskStore struct {
	tasks map[string]*models.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: map[string]*models.Task{}}
}

func (m *memTaskStore) Create(ctx context.Context, task *models.Task) error {
	task.ID = bson.NewObjectID()
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	m.tasks[task.ID.Hex()] = task
	return nil
}

func (m *memTaskStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Task, error) {
	return m.tasks[id.Hex()], nil
}

func (m *memTaskStore) List(ctx context.Context) ([]*models.Task, error) {
	out := []*models.Task{}
	for _, task := range m.tasks {
		out = append(out, task)
	}
	return out, nil
}

func (m *memTaskStore) ListByProject(ctx context.Context, projectID bson.ObjectID) ([]*models.Task, error) {
	out := []*models.Task{}
	for _, task := range m.tasks {
		if task.ProjectID == projectID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (m *memTaskStore) Update(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	task, ok := m.tasks[id.Hex()]
	if !ok {
		return nil
	}
	if v, ok := fields["title"].(string); ok {
		task.Title = v
	}
	if v, ok := fields["status"].(string); ok {
		task.Status = v
	}
	if v, ok := fields["assigned_to"].(string); ok {
		task.AssignedTo = v
	}
	task.UpdatedAt = time.Now()
	return nil
}

func (m *memTaskStore) Delete(ctx context.Context, id bson.ObjectID) error {
	delete(m.tasks, id.Hex())
	return nil
}

// --- WebhookLedger ---

type memLedger struct {
	events map[string]string
}

func newMemLedger() *memLedger {
	return &memLedger{events: map[string]string{}}
}

func (m *memLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	_, ok := m.events[eventID]
	return ok, nil
}

func (m *memLedger) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	m.events[eventID] = eventType
	return nil
}

// --- ContactStore ---

type memContactStore struct {
	messages []*models.ContactMessage
}

func newMemContactStore() *memContactStore {
	return &memContactStore{}
}

func (m *memContactStore) Create(ctx context.Context, msg *models.ContactMessage) error {
	msg.ID = bson.NewObjectID()
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	return nil
}

// --- SettingsStore ---

type memSettingsStore struct {
	settings *models.Settings
}

func newMemSettingsStore() *memSettingsStore {
	return &memSettingsStore{}
}

func (m *memSettingsStore) Get(ctx context.Context) (*models.Settings, error) {
	if m.settings == nil {
		m.settings = &models.Settings{
			ID:        bson.NewObjectID(),
			Values:    map[string]string{},
			UpdatedAt: time.Now(),
		}
	}
	return m.settings, nil
}

func (m *memSettingsStore) Update(ctx context.Context, values map[string]string) (*models.Settings, error) {
	s, _ := m.Get(ctx)
	s.Values = values
	s.UpdatedAt = time.Now()
	return s, nil
}
