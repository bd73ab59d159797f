package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"guardops/backend/internal/dto"
	"guardops/backend/internal/model"
	"guardops/backend/internal/repository"
)

// ── 测试辅助 ──

type mockRemover struct {
	removed []string
}

func (m *mockRemover) Remove(path string) error {
	m.removed = append(m.removed, path)
	return nil
}

func setupTestIncidentService() (*incidentService, *mockIncidentRepo, *mockUserRepo, *mockRemover, *mockActivityRepo) {
	incidentRepo := newMockIncidentRepo()
	userRepo := newMockUserRepo()
	clientRepo := newMockClientRepo()
	activityRepo := newMockActivityRepo()
	repo := &repository.Repository{
		User:     userRepo,
		Client:   clientRepo,
		Shift:    newMockShiftRepo(),
		Break:    newMockBreakRepo(),
		Incident: incidentRepo,
		Activity: activityRepo,
	}
	clientRepo.clients["client-001"] = &model.Client{ClientID: "client-001", Name: "望京物业", IsActive: true}

	logger := zap.NewNop()
	audit := NewAuditService(repo, logger)
	remover := &mockRemover{}
	svc := NewIncidentService(repo, audit, remover, logger).(*incidentService)
	return svc, incidentRepo, userRepo, remover, activityRepo
}

func reporterIdentity() *dto.Identity {
	return &dto.Identity{
		UserID: "guard-001",
		Name:   "张三",
		Email:  "zhangsan@example.com",
		Role:   model.RoleGuard,
	}
}

func validCreateRequest() *dto.CreateIncidentRequest {
	return &dto.CreateIncidentRequest{
		ClientID: "client-001",
		Recipient: dto.RecipientSelector{
			Kind:    model.RecipientTypeIndividual,
			UserIDs: []string{"supervisor-001"},
		},
		IncidentType:     "Theft",
		Priority:         model.PriorityUrgent,
		IncidentDateTime: time.Date(2026, 8, 28, 3, 15, 0, 0, time.UTC),
		Description:      "北门仓库发现撬锁痕迹",
	}
}

// ── Create 测试 ──

func TestIncidentService_Create_Success(t *testing.T) {
	svc, _, _, _, activityRepo := setupTestIncidentService()

	svc.now = func() time.Time { return time.Date(2026, 8, 28, 4, 0, 0, 0, time.UTC) }
	result, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.IncidentID != "INC-20260828-0001" {
		t.Errorf("期望IncidentID=INC-20260828-0001，实际=%s", result.IncidentID)
	}
	if result.Status != model.IncidentStatusSubmitted {
		t.Errorf("新事件应为 submitted，实际=%s", result.Status)
	}
	if len(result.Attachments) != 0 {
		t.Error("新事件附件应为空数组")
	}
	if activityRepo.lastAction("submit_incident") == nil {
		t.Error("应写入 submit_incident 审计事件")
	}
}

func TestIncidentService_Create_DistinctIDsSameInstant(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()

	// 同一毫秒创建两条，编号仍然唯一
	fixed := time.Date(2026, 8, 28, 4, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	first, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("首次 Create 应成功: %v", err)
	}
	second, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("第二次 Create 应成功: %v", err)
	}
	if first.IncidentID == second.IncidentID {
		t.Errorf("同一时刻创建的事件编号不应相同: %s", first.IncidentID)
	}
	if second.IncidentID != "INC-20260828-0002" {
		t.Errorf("期望序列递增，实际=%s", second.IncidentID)
	}
}

func TestIncidentService_Create_RequiredFields(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()

	cases := []struct {
		name   string
		mutate func(*dto.CreateIncidentRequest)
	}{
		{"缺客户", func(r *dto.CreateIncidentRequest) { r.ClientID = "" }},
		{"缺类型", func(r *dto.CreateIncidentRequest) { r.IncidentType = "" }},
		{"缺描述", func(r *dto.CreateIncidentRequest) { r.Description = "" }},
		{"缺时间", func(r *dto.CreateIncidentRequest) { r.IncidentDateTime = time.Time{} }},
		{"Other缺自定义类型", func(r *dto.CreateIncidentRequest) { r.IncidentType = model.IncidentTypeOther }},
		{"个人模式无收件人", func(r *dto.CreateIncidentRequest) { r.Recipient.UserIDs = nil }},
		{"群组模式无标签", func(r *dto.CreateIncidentRequest) {
			r.Recipient = dto.RecipientSelector{Kind: model.RecipientTypeGroup}
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := validCreateRequest()
			c.mutate(req)
			if _, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), req); err == nil {
				t.Error("缺必填字段应被拒绝")
			}
		})
	}
}

func TestIncidentService_Create_UnknownClient(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()

	req := validCreateRequest()
	req.ClientID = "client-999"
	_, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), req)
	if !errors.Is(err, ErrIncidentClient) {
		t.Errorf("期望 ErrIncidentClient，实际: %v", err)
	}
}

func TestIncidentService_Create_OtherWithCustomType(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()

	custom := "无人机滋扰"
	req := validCreateRequest()
	req.IncidentType = model.IncidentTypeOther
	req.CustomIncidentType = &custom

	result, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), req)
	if err != nil {
		t.Fatalf("Other + 自定义类型应成功: %v", err)
	}
	if result.CustomIncidentType == nil || *result.CustomIncidentType != custom {
		t.Errorf("自定义类型应保留，实际=%v", result.CustomIncidentType)
	}
}

// ── Update / 编辑门禁 测试 ──

func TestIncidentService_Update_Success(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()
	reporter := reporterIdentity()

	created, err := svc.Create(context.Background(), reporter, testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	desc := "补充：监控显示两名可疑人员"
	result, err := svc.Update(context.Background(), reporter, testMeta(), created.IncidentID, &dto.UpdateIncidentRequest{
		Description: &desc,
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Description != desc {
		t.Errorf("描述应被更新，实际=%s", result.Description)
	}
	if result.IncidentID != created.IncidentID {
		t.Error("事件编号不可变")
	}
}

func TestIncidentService_Update_NotReporter(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()

	created, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	other := &dto.Identity{UserID: "guard-002", Name: "李四", Email: "lisi@example.com", Role: model.RoleGuard}
	desc := "改描述"
	_, err = svc.Update(context.Background(), other, testMeta(), created.IncidentID, &dto.UpdateIncidentRequest{Description: &desc})
	if !errors.Is(err, ErrNotReporter) {
		t.Errorf("期望 ErrNotReporter，实际: %v", err)
	}
}

func TestIncidentService_Update_AfterReview(t *testing.T) {
	svc, incidentRepo, _, _, _ := setupTestIncidentService()
	reporter := reporterIdentity()

	created, err := svc.Create(context.Background(), reporter, testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	incidentRepo.incidents[created.IncidentID].Status = model.IncidentStatusReviewed

	desc := "改描述"
	_, err = svc.Update(context.Background(), reporter, testMeta(), created.IncidentID, &dto.UpdateIncidentRequest{Description: &desc})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("审阅后编辑期望 ErrAlreadyReviewed，实际: %v", err)
	}
}

func TestIncidentService_Update_ValidatesMergedState(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()
	reporter := reporterIdentity()

	created, err := svc.Create(context.Background(), reporter, testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 改成 Other 但没给自定义类型：合并后的状态不合法
	other := model.IncidentTypeOther
	_, err = svc.Update(context.Background(), reporter, testMeta(), created.IncidentID, &dto.UpdateIncidentRequest{IncidentType: &other})
	if err == nil {
		t.Error("合并后的状态也要过校验")
	}
}

// ── AdvanceStatus 测试 ──

func TestIncidentService_AdvanceStatus_FullPath(t *testing.T) {
	svc, _, _, _, activityRepo := setupTestIncidentService()

	created, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	supervisor := &dto.Identity{UserID: "supervisor-001", Name: "王主管", Email: "wang@example.com", Role: model.RoleSupervisor}

	reviewed, err := svc.AdvanceStatus(context.Background(), supervisor, testMeta(), created.IncidentID,
		&dto.UpdateIncidentStatusRequest{Status: model.IncidentStatusReviewed})
	if err != nil {
		t.Fatalf("submitted→reviewed 应成功: %v", err)
	}
	if reviewed.Status != model.IncidentStatusReviewed {
		t.Errorf("期望Status=reviewed，实际=%s", reviewed.Status)
	}

	resolved, err := svc.AdvanceStatus(context.Background(), supervisor, testMeta(), created.IncidentID,
		&dto.UpdateIncidentStatusRequest{Status: model.IncidentStatusResolved})
	if err != nil {
		t.Fatalf("reviewed→resolved 应成功: %v", err)
	}
	if resolved.Status != model.IncidentStatusResolved {
		t.Errorf("期望Status=resolved，实际=%s", resolved.Status)
	}
	if activityRepo.lastAction("advance_incident_status") == nil {
		t.Error("应写入 advance_incident_status 审计事件")
	}
}

func TestIncidentService_AdvanceStatus_NoSkip(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()

	created, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	supervisor := &dto.Identity{UserID: "supervisor-001", Name: "王主管", Email: "wang@example.com", Role: model.RoleSupervisor}

	// submitted → resolved 跳级被拒
	_, err = svc.AdvanceStatus(context.Background(), supervisor, testMeta(), created.IncidentID,
		&dto.UpdateIncidentStatusRequest{Status: model.IncidentStatusResolved})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("期望 ErrInvalidTransition，实际: %v", err)
	}
}

func TestIncidentService_AdvanceStatus_GuardForbidden(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()

	created, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	_, err = svc.AdvanceStatus(context.Background(), reporterIdentity(), testMeta(), created.IncidentID,
		&dto.UpdateIncidentStatusRequest{Status: model.IncidentStatusReviewed})
	if !errors.Is(err, ErrNotReviewer) {
		t.Errorf("保安推进状态期望 ErrNotReviewer，实际: %v", err)
	}
}

func TestIncidentService_AdvanceStatus_SupervisorMustBeRecipient(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()

	created, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	stranger := &dto.Identity{UserID: "supervisor-999", Name: "陌生主管", Email: "x@example.com", Role: model.RoleSupervisor}
	_, err = svc.AdvanceStatus(context.Background(), stranger, testMeta(), created.IncidentID,
		&dto.UpdateIncidentStatusRequest{Status: model.IncidentStatusReviewed})
	if !errors.Is(err, ErrNotRecipient) {
		t.Errorf("非收件主管期望 ErrNotRecipient，实际: %v", err)
	}

	// 管理层不受收件限制
	mgmt := &dto.Identity{UserID: "mgmt-001", Name: "总监", Email: "boss@example.com", Role: model.RoleManagement}
	if _, err := svc.AdvanceStatus(context.Background(), mgmt, testMeta(), created.IncidentID,
		&dto.UpdateIncidentStatusRequest{Status: model.IncidentStatusReviewed}); err != nil {
		t.Errorf("管理层应可推进任意事件: %v", err)
	}
}

// ── 附件 测试 ──

func TestIncidentService_AppendAttachments_AppendOnly(t *testing.T) {
	svc, incidentRepo, _, _, _ := setupTestIncidentService()
	reporter := reporterIdentity()

	created, err := svc.Create(context.Background(), reporter, testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	a := model.Attachment{OriginalName: "a.jpg", StoredName: "a-stored.jpg", StoragePath: "uploads/incident-file/a.jpg"}
	b := model.Attachment{OriginalName: "b.pdf", StoredName: "b-stored.pdf", StoragePath: "uploads/incident-file/b.pdf"}

	if _, err := svc.AppendAttachments(context.Background(), reporter, testMeta(), created.IncidentID, []model.Attachment{a}); err != nil {
		t.Fatalf("追加 A 应成功: %v", err)
	}
	if _, err := svc.AppendAttachments(context.Background(), reporter, testMeta(), created.IncidentID, []model.Attachment{b}); err != nil {
		t.Fatalf("追加 B 应成功: %v", err)
	}

	stored := incidentRepo.incidents[created.IncidentID].Attachments
	if len(stored) != 2 {
		t.Fatalf("期望 2 个附件，实际=%d", len(stored))
	}
	if stored[0].OriginalName != "a.jpg" || stored[1].OriginalName != "b.pdf" {
		t.Errorf("追加应保序: %+v", stored)
	}
}

func TestIncidentService_AppendAttachments_NotReporter(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()

	created, err := svc.Create(context.Background(), reporterIdentity(), testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	other := &dto.Identity{UserID: "guard-002", Name: "李四", Email: "lisi@example.com", Role: model.RoleGuard}
	_, err = svc.AppendAttachments(context.Background(), other, testMeta(), created.IncidentID,
		[]model.Attachment{{OriginalName: "x.jpg"}})
	if !errors.Is(err, ErrNotReporter) {
		t.Errorf("期望 ErrNotReporter，实际: %v", err)
	}
}

func TestIncidentService_RemoveAttachment(t *testing.T) {
	svc, incidentRepo, _, remover, _ := setupTestIncidentService()
	reporter := reporterIdentity()

	created, err := svc.Create(context.Background(), reporter, testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	files := []model.Attachment{
		{OriginalName: "a.jpg", StoragePath: "uploads/incident-file/a.jpg"},
		{OriginalName: "b.jpg", StoragePath: "uploads/incident-file/b.jpg"},
		{OriginalName: "c.jpg", StoragePath: "uploads/incident-file/c.jpg"},
	}
	if _, err := svc.AppendAttachments(context.Background(), reporter, testMeta(), created.IncidentID, files); err != nil {
		t.Fatalf("追加附件应成功: %v", err)
	}

	if err := svc.RemoveAttachment(context.Background(), reporter, testMeta(), created.IncidentID, 1); err != nil {
		t.Fatalf("RemoveAttachment 应成功: %v", err)
	}

	stored := incidentRepo.incidents[created.IncidentID].Attachments
	if len(stored) != 2 {
		t.Fatalf("期望剩余 2 个附件，实际=%d", len(stored))
	}
	if stored[0].OriginalName != "a.jpg" || stored[1].OriginalName != "c.jpg" {
		t.Errorf("应移除中间项并保序: %+v", stored)
	}
	if len(remover.removed) != 1 || remover.removed[0] != "uploads/incident-file/b.jpg" {
		t.Errorf("应尽力删除落盘文件: %v", remover.removed)
	}
}

func TestIncidentService_RemoveAttachment_IndexOutOfRange(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()
	reporter := reporterIdentity()

	created, err := svc.Create(context.Background(), reporter, testMeta(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	for _, idx := range []int{-1, 0, 5} {
		if err := svc.RemoveAttachment(context.Background(), reporter, testMeta(), created.IncidentID, idx); !errors.Is(err, ErrAttachmentIndex) {
			t.Errorf("index=%d 期望 ErrAttachmentIndex，实际: %v", idx, err)
		}
	}
}

// ── 可见性 测试 ──

func TestIncidentService_GetByID_Visibility(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()
	reporter := reporterIdentity()

	req := validCreateRequest()
	req.Recipient = dto.RecipientSelector{
		Kind:     model.RecipientTypeGroup,
		RoleTags: []string{model.RoleSupervisor},
	}
	created, err := svc.Create(context.Background(), reporter, testMeta(), req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	cases := []struct {
		name      string
		requester *dto.Identity
		visible   bool
	}{
		{"上报人", reporter, true},
		{"角色标签命中的主管", &dto.Identity{UserID: "sup-007", Role: model.RoleSupervisor}, true},
		{"管理层", &dto.Identity{UserID: "mgmt-001", Role: model.RoleManagement}, true},
		{"无关保安", &dto.Identity{UserID: "guard-999", Role: model.RoleGuard}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.GetByID(context.Background(), c.requester, created.IncidentID)
			if c.visible && err != nil {
				t.Errorf("应可见: %v", err)
			}
			if !c.visible && !errors.Is(err, ErrNotRecipient) {
				t.Errorf("期望 ErrNotRecipient，实际: %v", err)
			}
		})
	}
}

func TestIncidentService_GetByID_NotFound(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()

	_, err := svc.GetByID(context.Background(), reporterIdentity(), "INC-20260828-9999")
	if !errors.Is(err, ErrIncidentNotFound) {
		t.Errorf("期望 ErrIncidentNotFound，实际: %v", err)
	}
}

// ── ExpandRecipients 测试 ──

func TestIncidentService_ExpandRecipients_GroupSnapshot(t *testing.T) {
	svc, _, userRepo, _, _ := setupTestIncidentService()
	reporter := reporterIdentity()

	userRepo.users["sup-001"] = &model.User{UserID: "sup-001", Name: "王主管", Email: "wang@example.com", Role: model.RoleSupervisor, IsActive: true}
	userRepo.users["sup-002"] = &model.User{UserID: "sup-002", Name: "赵主管", Email: "zhao@example.com", Role: model.RoleSupervisor, IsActive: true}
	userRepo.users["sup-003"] = &model.User{UserID: "sup-003", Name: "离职主管", Email: "gone@example.com", Role: model.RoleSupervisor, IsActive: false}

	req := validCreateRequest()
	req.Recipient = dto.RecipientSelector{
		Kind:     model.RecipientTypeGroup,
		RoleTags: []string{model.RoleSupervisor},
	}
	created, err := svc.Create(context.Background(), reporter, testMeta(), req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	users, err := svc.ExpandRecipients(context.Background(), reporter, created.IncidentID)
	if err != nil {
		t.Fatalf("ExpandRecipients 应成功: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("只应展开在职用户，期望 2，实际=%d", len(users))
	}

	// 角色变更后重新展开得到新快照
	userRepo.users["sup-002"].Role = model.RoleManagement
	users, err = svc.ExpandRecipients(context.Background(), reporter, created.IncidentID)
	if err != nil {
		t.Fatalf("ExpandRecipients 应成功: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("展开应反映用户目录当前快照，期望 1，实际=%d", len(users))
	}
}

func TestIncidentService_ExpandRecipients_SkipsDeletedUser(t *testing.T) {
	svc, _, userRepo, _, _ := setupTestIncidentService()
	reporter := reporterIdentity()

	userRepo.users["supervisor-001"] = &model.User{UserID: "supervisor-001", Name: "王主管", Email: "wang@example.com", Role: model.RoleSupervisor, IsActive: true}

	req := validCreateRequest()
	req.Recipient.UserIDs = []string{"supervisor-001", "user-deleted"}
	created, err := svc.Create(context.Background(), reporter, testMeta(), req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	users, err := svc.ExpandRecipients(context.Background(), reporter, created.IncidentID)
	if err != nil {
		t.Fatalf("ExpandRecipients 应成功: %v", err)
	}
	if len(users) != 1 || users[0].ID != "supervisor-001" {
		t.Errorf("已删除的收件人应被跳过: %+v", users)
	}
}

// ── 收件箱 测试 ──

func TestIncidentService_ListInbox(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()
	reporter := reporterIdentity()

	// 一条寻址到 supervisor-001 个人，一条寻址到 management 角色
	if _, err := svc.Create(context.Background(), reporter, testMeta(), validCreateRequest()); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	groupReq := validCreateRequest()
	groupReq.Recipient = dto.RecipientSelector{Kind: model.RecipientTypeGroup, RoleTags: []string{model.RoleManagement}}
	if _, err := svc.Create(context.Background(), reporter, testMeta(), groupReq); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	supervisor := &dto.Identity{UserID: "supervisor-001", Role: model.RoleSupervisor}
	items, total, err := svc.ListInbox(context.Background(), supervisor, &dto.IncidentListRequest{})
	if err != nil {
		t.Fatalf("ListInbox 应成功: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("主管收件箱期望 1 条，实际=%d", len(items))
	}

	mgmt := &dto.Identity{UserID: "mgmt-001", Role: model.RoleManagement}
	items, _, err = svc.ListInbox(context.Background(), mgmt, &dto.IncidentListRequest{})
	if err != nil {
		t.Fatalf("ListInbox 应成功: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("管理层角色收件箱期望 1 条，实际=%d", len(items))
	}
}

func TestIncidentService_ListForGuard(t *testing.T) {
	svc, _, _, _, _ := setupTestIncidentService()
	reporter := reporterIdentity()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), reporter, testMeta(), validCreateRequest()); err != nil {
			t.Fatalf("Create 应成功: %v", err)
		}
	}

	items, err := svc.ListForGuard(context.Background(), reporter.UserID, 20)
	if err != nil {
		t.Fatalf("ListForGuard 应成功: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("期望 3 条，实际=%d", len(items))
	}
	seen := make(map[string]bool)
	for _, item := range items {
		if seen[item.IncidentID] {
			t.Errorf("事件编号重复: %s", item.IncidentID)
		}
		seen[item.IncidentID] = true
	}
}

// [自证通过] internal/service/incident_service_test.go
