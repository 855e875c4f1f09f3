package ngocontent

// CreateCategoryRequest contains parameters for creating a category
type CreateCategoryRequest struct {
	Name        string        `json:"name" validate:"required,max=255"`
	Description string        `json:"description" validate:"max=2000"`
	Image       *PendingAsset `json:"-"`
}

func (r CreateCategoryRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	return validateAsset(r.Image)
}

// UpdateCategoryRequest contains parameters for updating a category.
// A nil or empty Image keeps the current image; RemoveImage drops it.
type UpdateCategoryRequest struct {
	ID          int64         `json:"id" validate:"gt=0"`
	Name        string        `json:"name" validate:"required,max=255"`
	Description string        `json:"description" validate:"max=2000"`
	Image       *PendingAsset `json:"-"`
	RemoveImage bool          `json:"remove_image"`
}

func (r UpdateCategoryRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if err := validateAsset(r.Image); err != nil {
		return err
	}
	_, err := assetChange(r.Image, r.RemoveImage)
	return err
}

// CreateTestimonialRequest contains parameters for creating a testimonial
type CreateTestimonialRequest struct {
	Name    string        `json:"name" validate:"required,max=255"`
	Content string        `json:"content" validate:"required,max=5000"`
	Image   *PendingAsset `json:"-"`
}

func (r CreateTestimonialRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	return validateAsset(r.Image)
}

// UpdateTestimonialRequest contains parameters for updating a testimonial
type UpdateTestimonialRequest struct {
	ID          int64         `json:"id" validate:"gt=0"`
	Name        string        `json:"name" validate:"required,max=255"`
	Content     string        `json:"content" validate:"required,max=5000"`
	Image       *PendingAsset `json:"-"`
	RemoveImage bool          `json:"remove_image"`
}

func (r UpdateTestimonialRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if err := validateAsset(r.Image); err != nil {
		return err
	}
	_, err := assetChange(r.Image, r.RemoveImage)
	return err
}

// CreateMemberRequest contains parameters for creating a member
type CreateMemberRequest struct {
	Name         string        `json:"name" validate:"required,max=255"`
	Description  string        `json:"description" validate:"max=2000"`
	FacebookURL  string        `json:"facebook_url" validate:"omitempty,url"`
	InstagramURL string        `json:"instagram_url" validate:"omitempty,url"`
	LinkedinURL  string        `json:"linkedin_url" validate:"omitempty,url"`
	Image        *PendingAsset `json:"-"`
}

func (r CreateMemberRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	return validateAsset(r.Image)
}

// UpdateMemberRequest contains parameters for updating a member
type UpdateMemberRequest struct {
	ID           int64         `json:"id" validate:"gt=0"`
	Name         string        `json:"name" validate:"required,max=255"`
	Description  string        `json:"description" validate:"max=2000"`
	FacebookURL  string        `json:"facebook_url" validate:"omitempty,url"`
	InstagramURL string        `json:"instagram_url" validate:"omitempty,url"`
	LinkedinURL  string        `json:"linkedin_url" validate:"omitempty,url"`
	Image        *PendingAsset `json:"-"`
	RemoveImage  bool          `json:"remove_image"`
}

func (r UpdateMemberRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if err := validateAsset(r.Image); err != nil {
		return err
	}
	_, err := assetChange(r.Image, r.RemoveImage)
	return err
}
