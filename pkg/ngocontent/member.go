package ngocontent

import "context"

// MemberService manages team members and their photos.
type MemberService struct {
	svc *entityService[*Member]
}

func (s *MemberService) Create(ctx context.Context, req CreateMemberRequest) Result[*Member] {
	if err := req.Validate(); err != nil {
		return Fail[*Member](err)
	}
	return s.svc.create(ctx, memberFromCreate(req), req.Image)
}

func (s *MemberService) Update(ctx context.Context, req UpdateMemberRequest) Result[*Member] {
	if err := req.Validate(); err != nil {
		return Fail[*Member](err)
	}
	change, err := assetChange(req.Image, req.RemoveImage)
	if err != nil {
		return Fail[*Member](err)
	}
	return s.svc.update(ctx, req.ID, func(m *Member) { applyMemberUpdate(m, req) }, change)
}

func (s *MemberService) Delete(ctx context.Context, id int64) Result[*Member] {
	return s.svc.delete(ctx, id)
}

func (s *MemberService) Get(ctx context.Context, id int64) Result[*Member] {
	return s.svc.get(ctx, id)
}

// GetPage returns member summaries ordered by name.
func (s *MemberService) GetPage(ctx context.Context, page, pageSize int) Result[*Page[MemberSummary]] {
	return pageOf(ctx, s.svc, page, pageSize, memberSummary)
}

// List returns every member. The HTTP layer reserves it for administrators.
func (s *MemberService) List(ctx context.Context) Result[[]*Member] {
	return s.svc.list(ctx)
}
