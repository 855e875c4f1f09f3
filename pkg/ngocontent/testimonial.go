package ngocontent

import "context"

// TestimonialService manages testimonials and their images.
type TestimonialService struct {
	svc *entityService[*Testimonial]
}

func (s *TestimonialService) Create(ctx context.Context, req CreateTestimonialRequest) Result[*Testimonial] {
	if err := req.Validate(); err != nil {
		return Fail[*Testimonial](err)
	}
	return s.svc.create(ctx, testimonialFromCreate(req), req.Image)
}

func (s *TestimonialService) Update(ctx context.Context, req UpdateTestimonialRequest) Result[*Testimonial] {
	if err := req.Validate(); err != nil {
		return Fail[*Testimonial](err)
	}
	change, err := assetChange(req.Image, req.RemoveImage)
	if err != nil {
		return Fail[*Testimonial](err)
	}
	return s.svc.update(ctx, req.ID, func(t *Testimonial) { applyTestimonialUpdate(t, req) }, change)
}

func (s *TestimonialService) Delete(ctx context.Context, id int64) Result[*Testimonial] {
	return s.svc.delete(ctx, id)
}

func (s *TestimonialService) Get(ctx context.Context, id int64) Result[*Testimonial] {
	return s.svc.get(ctx, id)
}

// GetPage returns testimonial summaries in creation order.
func (s *TestimonialService) GetPage(ctx context.Context, page, pageSize int) Result[*Page[TestimonialSummary]] {
	return pageOf(ctx, s.svc, page, pageSize, testimonialSummary)
}
