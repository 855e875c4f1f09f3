package ngocontent

// Mapping between requests, entities and projections. These are plain
// functions with no state; services share them across requests.

func categoryFromCreate(req CreateCategoryRequest) *Category {
	return &Category{
		Name:        req.Name,
		Description: req.Description,
	}
}

func applyCategoryUpdate(c *Category, req UpdateCategoryRequest) {
	c.Name = req.Name
	c.Description = req.Description
}

func categoryName(c *Category) string {
	return c.Name
}

func testimonialFromCreate(req CreateTestimonialRequest) *Testimonial {
	return &Testimonial{
		Name:    req.Name,
		Content: req.Content,
	}
}

func applyTestimonialUpdate(t *Testimonial, req UpdateTestimonialRequest) {
	t.Name = req.Name
	t.Content = req.Content
}

func testimonialSummary(t *Testimonial) TestimonialSummary {
	return TestimonialSummary{
		ID:      t.ID,
		Name:    t.Name,
		Content: t.Content,
		Image:   t.Image,
	}
}

func memberFromCreate(req CreateMemberRequest) *Member {
	return &Member{
		Name:         req.Name,
		Description:  req.Description,
		FacebookURL:  req.FacebookURL,
		InstagramURL: req.InstagramURL,
		LinkedinURL:  req.LinkedinURL,
	}
}

func applyMemberUpdate(m *Member, req UpdateMemberRequest) {
	m.Name = req.Name
	m.Description = req.Description
	m.FacebookURL = req.FacebookURL
	m.InstagramURL = req.InstagramURL
	m.LinkedinURL = req.LinkedinURL
}

func memberSummary(m *Member) MemberSummary {
	return MemberSummary{
		ID:    m.ID,
		Name:  m.Name,
		Image: m.Image,
	}
}
