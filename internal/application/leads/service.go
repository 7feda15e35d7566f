package leads

import (
	"context"
	"strings"

	"estate-backend/internal/application/images"
	"estate-backend/internal/domain"
	"estate-backend/internal/pkg/apperror"
	"estate-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

// Viewer identifies the caller; nil means anonymous.
type Viewer struct {
	ID      uint
	Admin   bool
	Realtor bool
}

type Service struct {
	DB     *gorm.DB
	Images *images.Service
}

// SubmitInput is a contact request against a listing. Anonymous submissions
// are allowed; Upload is an optional single attached image.
type SubmitInput struct {
	ListingID    *uint  `json:"listing_id"`
	Name         string `json:"name"`
	ContactPhone string `json:"contact_phone"`
	Message      string `json:"message"`
	Upload       *images.Upload
}

// Submit creates a lead, linked to the submitter when one is authenticated.
func (s *Service) Submit(ctx context.Context, in SubmitInput, submitter *Viewer) (*domain.Application, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.ContactPhone) == "" {
		fields["contact_phone"] = "Contact phone is required"
	} else if !validation.IsValidPhone(in.ContactPhone) {
		fields["contact_phone"] = "Invalid phone number"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("Invalid application payload", fields)
	}
	if in.ListingID != nil {
		var l domain.Listing
		if err := s.DB.WithContext(ctx).First(&l, *in.ListingID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperror.FieldError("listing_id", "Listing does not exist")
			}
			return nil, apperror.Internal(err)
		}
	}

	imageFile := ""
	if in.Upload != nil {
		name, err := s.Images.StoreImage(ctx, *in.Upload)
		if err != nil {
			return nil, err
		}
		imageFile = name
	}

	app := &domain.Application{
		ListingID:    in.ListingID,
		Name:         strings.TrimSpace(in.Name),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Message:      in.Message,
		ImageFile:    imageFile,
	}
	if submitter != nil {
		id := submitter.ID
		app.UserID = &id
	}
	if err := s.DB.WithContext(ctx).Create(app).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return app, nil
}

// List scopes leads to the viewer: admins see all, realtors see leads against
// their listings plus their own submissions, regular users only their own
// submissions, anonymous callers none.
func (s *Service) List(ctx context.Context, viewer *Viewer) ([]domain.Application, error) {
	if viewer == nil {
		return nil, apperror.Unauthorized("Authentication required")
	}
	q := s.DB.WithContext(ctx).Model(&domain.Application{}).Order("created_at DESC")
	switch {
	case viewer.Admin:
		// all leads
	case viewer.Realtor:
		q = q.Joins("LEFT JOIN listings ON listings.id = applications.listing_id").
			Where("listings.owner_id = ? OR applications.user_id = ?", viewer.ID, viewer.ID)
	default:
		q = q.Where("applications.user_id = ?", viewer.ID)
	}
	var apps []domain.Application
	if err := q.Find(&apps).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// Get returns one lead if the viewer may see it: submitter, owning realtor
// or admin.
func (s *Service) Get(ctx context.Context, id uint, viewer *Viewer) (*domain.Application, error) {
	if viewer == nil {
		return nil, apperror.Unauthorized("Authentication required")
	}
	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canSee(ctx, app, viewer) {
		return nil, apperror.Forbidden("Not allowed to view this application")
	}
	return app, nil
}

// UpdateInput carries partial lead updates.
type UpdateInput struct {
	Name         *string `json:"name"`
	ContactPhone *string `json:"contact_phone"`
	Message      *string `json:"message"`
}

// Update modifies a lead; only the submitter or an admin may do so.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput, viewer *Viewer) (*domain.Application, error) {
	if viewer == nil {
		return nil, apperror.Unauthorized("Authentication required")
	}
	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canMutate(app, viewer) {
		return nil, apperror.Forbidden("Only the submitter or an admin may modify an application")
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.ContactPhone != nil {
		if !validation.IsValidPhone(*in.ContactPhone) {
			return nil, apperror.FieldError("contact_phone", "Invalid phone number")
		}
		updates["contact_phone"] = strings.TrimSpace(*in.ContactPhone)
	}
	if in.Message != nil {
		updates["message"] = *in.Message
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(app).Updates(updates).Error; err != nil {
			return nil, apperror.Internal(err)
		}
	}
	return app, nil
}

// Delete removes a lead permanently (leads are hard-deleted, unlike listings).
func (s *Service) Delete(ctx context.Context, id uint, viewer *Viewer) error {
	if viewer == nil {
		return apperror.Unauthorized("Authentication required")
	}
	app, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !s.canMutate(app, viewer) {
		return apperror.Forbidden("Only the submitter or an admin may delete an application")
	}
	if err := s.DB.WithContext(ctx).Delete(app).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *Service) find(ctx context.Context, id uint) (*domain.Application, error) {
	var app domain.Application
	if err := s.DB.WithContext(ctx).First(&app, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Application")
		}
		return nil, apperror.Internal(err)
	}
	return &app, nil
}

func (s *Service) canMutate(app *domain.Application, viewer *Viewer) bool {
	if viewer.Admin {
		return true
	}
	return app.UserID != nil && *app.UserID == viewer.ID
}

func (s *Service) canSee(ctx context.Context, app *domain.Application, viewer *Viewer) bool {
	if s.canMutate(app, viewer) {
		return true
	}
	if app.ListingID == nil {
		return false
	}
	var l domain.Listing
	if err := s.DB.WithContext(ctx).First(&l, *app.ListingID).Error; err != nil {
		return false
	}
	return l.OwnerID == viewer.ID
}
