package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/kendall-kelly/technician-finder-api/events"
	"github.com/kendall-kelly/technician-finder-api/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TechnicianInput is the body of a technician profile creation
type TechnicianInput struct {
	Skills          []string            `json:"skills" binding:"required,min=1,max=3,dive,required"`
	ExperienceYears int                 `json:"experienceYears" binding:"gte=0,lte=50"`
	HourlyRate      float64             `json:"hourlyRate" binding:"gte=500,lte=100000"`
	Availability    models.Availability `json:"availability" binding:"required,oneof=available busy offline"`
	Bio             string              `json:"bio"`
	BioFr           string              `json:"bioFr"`
	Gallery         []GalleryEntry      `json:"gallery" binding:"omitempty,max=12,dive"`
}

// TechnicianUpdate is a partial technician profile update; nil fields are left as stored.
// When ExpectedVersion is set the update only applies to that version.
type TechnicianUpdate struct {
	Skills          []string             `json:"skills" binding:"omitempty,min=1,max=3,dive,required"`
	ExperienceYears *int                 `json:"experienceYears" binding:"omitempty,gte=0,lte=50"`
	HourlyRate      *float64             `json:"hourlyRate" binding:"omitempty,gte=500,lte=100000"`
	Availability    *models.Availability `json:"availability" binding:"omitempty,oneof=available busy offline"`
	Bio             *string              `json:"bio"`
	BioFr           *string              `json:"bioFr"`
	Gallery         []GalleryEntry       `json:"gallery" binding:"omitempty,max=12,dive"`
	ExpectedVersion *int                 `json:"expectedVersion" binding:"omitempty,gte=1"`
}

// UserProfileUpdate holds the user profile fields to change; empty values are ignored
type UserProfileUpdate struct {
	Name         string `json:"name"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	AvatarFileID string `json:"avatarFileId"`
}

// ProfileService reads and writes user and technician profiles
type ProfileService struct {
	db        *gorm.DB
	images    ImageService
	skills    *SkillRegistry
	publisher events.Publisher
	logger    *zap.Logger
}

var profileServiceInstance *ProfileService

// NewProfileService creates a profile service. skills may be nil, in which case
// skill names are not checked against a registry.
func NewProfileService(db *gorm.DB, images ImageService, skills *SkillRegistry, publisher events.Publisher, logger *zap.Logger) *ProfileService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{db: db, images: images, skills: skills, publisher: publisher, logger: logger}
}

// InitProfileService creates the process-wide profile service
func InitProfileService(db *gorm.DB, images ImageService, skills *SkillRegistry, publisher events.Publisher, logger *zap.Logger) *ProfileService {
	profileServiceInstance = NewProfileService(db, images, skills, publisher, logger)
	return profileServiceInstance
}

// GetProfileService returns the initialized profile service instance
func GetProfileService() *ProfileService {
	return profileServiceInstance
}

// SetProfileService sets the profile service instance (primarily for testing)
func SetProfileService(service *ProfileService) {
	profileServiceInstance = service
}

// GetTechnician returns the technician profile owned by userID, or nil when there is none
func (s *ProfileService) GetTechnician(ctx context.Context, userID string) (*models.TechnicianProfile, error) {
	var profile models.TechnicianProfile
	err := s.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, transport("failed to load technician profile", err)
	}
	return &profile, nil
}

// GetTechnicianByID returns the technician profile with the given document id
func (s *ProfileService) GetTechnicianByID(ctx context.Context, id string) (*models.TechnicianProfile, error) {
	var profile models.TechnicianProfile
	err := s.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeTechnicianNotFound, "Technician not found")
	}
	if err != nil {
		return nil, transport("failed to load technician profile", err)
	}
	return &profile, nil
}

// ListTechnicians returns every technician profile joined with its owner, oldest first
func (s *ProfileService) ListTechnicians(ctx context.Context) ([]models.TechnicianListing, error) {
	var profiles []models.TechnicianProfile
	if err := s.db.WithContext(ctx).Preload("User").Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, transport("failed to list technicians", err)
	}

	listings := make([]models.TechnicianListing, 0, len(profiles))
	for _, p := range profiles {
		listings = append(listings, s.Listing(p))
	}
	return listings, nil
}

// Listing builds the directory view of a profile; profile.User should be preloaded
func (s *ProfileService) Listing(profile models.TechnicianProfile) models.TechnicianListing {
	listing := models.TechnicianListing{TechnicianProfile: profile, GalleryURLs: []string{}}
	if profile.User != nil {
		listing.Name = profile.User.Name
		listing.Phone = profile.User.Phone
		listing.Location = profile.User.Location
	}
	if s.images != nil {
		for _, id := range profile.Gallery {
			listing.GalleryURLs = append(listing.GalleryURLs, s.images.GetGalleryImageURL(id))
		}
	}
	return listing
}

// CreateTechnician creates userID's technician profile. System-managed counters
// start at zero and the version at 1.
func (s *ProfileService) CreateTechnician(ctx context.Context, userID string, input TechnicianInput) (*models.TechnicianProfile, error) {
	if _, err := s.getUserByID(ctx, userID); err != nil {
		return nil, err
	}

	existing, err := s.GetTechnician(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflict(CodeTechnicianExists, "A technician profile already exists for this user")
	}

	if err := s.validateSkills(input.Skills); err != nil {
		return nil, err
	}

	if err := s.checkGalleryOwnership(ctx, userID, input.Gallery, nil); err != nil {
		return nil, err
	}
	gallery, err := s.resolveGallery(ctx, input.Gallery)
	if err != nil {
		return nil, err
	}
	uploaded := newFiles(input.Gallery, gallery)
	if err := s.recordUploads(ctx, userID, uploaded); err != nil {
		DeleteImages(ctx, s.images, s.logger, uploaded)
		return nil, err
	}

	profile := models.TechnicianProfile{
		UserID:          userID,
		Skills:          datatypes.JSONSlice[string](input.Skills),
		ExperienceYears: input.ExperienceYears,
		HourlyRate:      input.HourlyRate,
		Availability:    input.Availability,
		Bio:             input.Bio,
		BioFr:           input.BioFr,
		Gallery:         datatypes.JSONSlice[string](gallery),
	}

	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		s.discardImages(ctx, uploaded)
		if isUniqueViolation(err) {
			return nil, conflict(CodeTechnicianExists, "A technician profile already exists for this user")
		}
		return nil, transport("failed to create technician profile", err)
	}

	s.logger.Info("technician profile created", zap.String("technicianId", profile.ID), zap.String("userId", userID))
	return s.GetTechnicianByID(ctx, profile.ID)
}

// UpdateTechnician merges the set fields of update into the profile with the
// given id and bumps its version. Gallery images dropped by the update are
// deleted from storage; failures there are logged only.
func (s *ProfileService) UpdateTechnician(ctx context.Context, id string, update TechnicianUpdate) (*models.TechnicianProfile, error) {
	current, err := s.GetTechnicianByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.ExpectedVersion != nil && *update.ExpectedVersion != current.Version {
		return nil, conflict(CodeVersionConflict, "The profile was modified by someone else")
	}

	updates := map[string]interface{}{}
	if update.Skills != nil {
		if err := s.validateSkills(update.Skills); err != nil {
			return nil, err
		}
		updates["skills"] = datatypes.JSONSlice[string](update.Skills)
	}
	if update.ExperienceYears != nil {
		updates["experience_years"] = *update.ExperienceYears
	}
	if update.HourlyRate != nil {
		updates["hourly_rate"] = *update.HourlyRate
	}
	if update.Availability != nil {
		updates["availability"] = *update.Availability
	}
	if update.Bio != nil {
		updates["bio"] = *update.Bio
	}
	if update.BioFr != nil {
		updates["bio_fr"] = *update.BioFr
	}

	var gallery, uploaded []string
	if update.Gallery != nil {
		if err := s.checkGalleryOwnership(ctx, current.UserID, update.Gallery, current.Gallery); err != nil {
			return nil, err
		}
		gallery, err = s.resolveGallery(ctx, update.Gallery)
		if err != nil {
			return nil, err
		}
		uploaded = newFiles(update.Gallery, gallery)
		if err := s.recordUploads(ctx, current.UserID, uploaded); err != nil {
			DeleteImages(ctx, s.images, s.logger, uploaded)
			return nil, err
		}
		updates["gallery"] = datatypes.JSONSlice[string](gallery)
	}

	updates["version"] = gorm.Expr("version + 1")
	updates["updated_at"] = time.Now()

	query := s.db.WithContext(ctx).Model(&models.TechnicianProfile{}).Where("id = ?", id)
	if update.ExpectedVersion != nil {
		query = query.Where("version = ?", *update.ExpectedVersion)
	}
	res := query.Updates(updates)
	if res.Error != nil {
		s.discardImages(ctx, uploaded)
		return nil, transport("failed to update technician profile", res.Error)
	}
	if res.RowsAffected == 0 {
		s.discardImages(ctx, uploaded)
		return nil, conflict(CodeVersionConflict, "The profile was modified by someone else")
	}

	if update.Gallery != nil {
		s.discardImages(ctx, RemovedFiles(current.Gallery, gallery))
	}

	return s.GetTechnicianByID(ctx, id)
}

// DeleteTechnician permanently removes a technician profile and, best effort, its gallery images
func (s *ProfileService) DeleteTechnician(ctx context.Context, id string) error {
	profile, err := s.GetTechnicianByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Unscoped().Delete(&models.TechnicianProfile{}, "id = ?", id).Error; err != nil {
		return transport("failed to delete technician profile", err)
	}

	s.discardImages(ctx, profile.Gallery)
	s.logger.Info("technician profile deleted", zap.String("technicianId", id))
	return nil
}

// GetUserProfile returns the profile of the account, or nil when there is none
func (s *ProfileService) GetUserProfile(ctx context.Context, auth0ID string) (*models.UserProfile, error) {
	var user models.UserProfile
	err := s.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, transport("failed to load user profile", err)
	}
	return &user, nil
}

// CreateUserProfile stores a new user profile and announces it with a user.created event.
// A failed publish is logged; the profile is kept.
func (s *ProfileService) CreateUserProfile(ctx context.Context, user *models.UserProfile) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return conflict(CodeUserExists, "A user with this Auth0 ID or email already exists")
		}
		return transport("failed to create user profile", err)
	}

	event := events.UserCreated{
		UserID:    user.ID,
		Name:      user.Name,
		Location:  user.Location,
		CreatedAt: user.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, events.RKUserCreated, event); err != nil {
		s.logger.Error("failed to publish user.created", zap.String("userId", user.ID), zap.Error(err))
	}
	return nil
}

// UpdateUserProfile applies the non-empty fields of update to the account's profile
func (s *ProfileService) UpdateUserProfile(ctx context.Context, auth0ID string, update UserProfileUpdate) (*models.UserProfile, error) {
	user, err := s.GetUserProfile(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound(CodeUserNotFound, "User profile not found")
	}

	updates := make(map[string]interface{})
	if update.Name != "" {
		updates["name"] = update.Name
	}
	if update.Email != "" {
		updates["email"] = update.Email
	}
	if update.Phone != "" {
		updates["phone"] = update.Phone
	}
	if update.Location != "" {
		updates["location"] = update.Location
	}
	if update.AvatarFileID != "" {
		updates["avatar_file_id"] = update.AvatarFileID
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict(CodeEmailExists, "A user with this email already exists")
		}
		return nil, transport("failed to update user profile", err)
	}

	return s.GetUserProfile(ctx, auth0ID)
}

// PromoteToAdmin gives a user the admin role and flags their push tokens so
// they receive signup notifications
func (s *ProfileService) PromoteToAdmin(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.getUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
			return err
		}
		return tx.Model(&models.PushToken{}).Where("user_id = ?", userID).Update("is_admin", true).Error
	})
	if err != nil {
		return nil, transport("failed to promote user", err)
	}

	s.logger.Info("user promoted to admin", zap.String("userId", userID))
	return s.getUserByID(ctx, userID)
}

// RegisterPushToken records token for the user, moving it over if another
// account registered it before
func (s *ProfileService) RegisterPushToken(ctx context.Context, user *models.UserProfile, token, platform string) (*models.PushToken, error) {
	pt := models.PushToken{
		Token:    token,
		UserID:   user.ID,
		IsAdmin:  user.IsAdmin(),
		Platform: platform,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "is_admin", "platform", "updated_at"}),
	}).Create(&pt).Error
	if err != nil {
		return nil, transport("failed to register push token", err)
	}

	var stored models.PushToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&stored).Error; err != nil {
		return nil, transport("failed to load push token", err)
	}
	return &stored, nil
}

// UploadGalleryImage stores one image for userID and records the account as
// its owner, so the file can later be referenced from that user's gallery
func (s *ProfileService) UploadGalleryImage(ctx context.Context, userID string, file *multipart.FileHeader) (string, error) {
	if s.images == nil {
		return "", transport("image storage is not configured", errors.New("nil image service"))
	}
	fileID, err := s.images.UploadGalleryImage(ctx, file)
	if err != nil {
		return "", err
	}
	if err := s.recordUploads(ctx, userID, []string{fileID}); err != nil {
		DeleteImages(ctx, s.images, s.logger, []string{fileID})
		return "", err
	}
	return fileID, nil
}

func (s *ProfileService) getUserByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var user models.UserProfile
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(CodeUserNotFound, "User profile not found")
	}
	if err != nil {
		return nil, transport("failed to load user profile", err)
	}
	return &user, nil
}

func (s *ProfileService) validateSkills(skills []string) error {
	if s.skills == nil {
		return nil
	}
	return s.skills.ValidateSkills(skills)
}

func (s *ProfileService) resolveGallery(ctx context.Context, entries []GalleryEntry) ([]string, error) {
	if len(entries) == 0 {
		return []string{}, nil
	}
	if s.images == nil {
		return nil, transport("image storage is not configured", errors.New("nil image service"))
	}
	return s.images.ResolveGallery(ctx, entries)
}

// newFiles returns the resolved ids that came from new entries
func newFiles(entries []GalleryEntry, resolved []string) []string {
	var ids []string
	for i, e := range entries {
		if e.Kind == GalleryNew && i < len(resolved) {
			ids = append(ids, resolved[i])
		}
	}
	return ids
}

// checkGalleryOwnership rejects existing entries that point at files neither in
// the current gallery nor uploaded by userID
func (s *ProfileService) checkGalleryOwnership(ctx context.Context, userID string, entries []GalleryEntry, current []string) error {
	allowed := make(map[string]struct{}, len(current))
	for _, id := range current {
		allowed[id] = struct{}{}
	}

	var wanted []string
	for _, e := range entries {
		if e.Kind != GalleryExisting || e.FileID == "" {
			continue
		}
		if _, ok := allowed[e.FileID]; !ok {
			wanted = append(wanted, e.FileID)
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	var owned []string
	err := s.db.WithContext(ctx).Model(&models.GalleryUpload{}).
		Where("user_id = ? AND file_id IN ?", userID, wanted).
		Pluck("file_id", &owned).Error
	if err != nil {
		return transport("failed to check gallery ownership", err)
	}
	for _, id := range owned {
		allowed[id] = struct{}{}
	}

	for i, e := range entries {
		if e.Kind != GalleryExisting || e.FileID == "" {
			continue
		}
		if _, ok := allowed[e.FileID]; !ok {
			return invalid(CodeInvalidGallery, fmt.Sprintf("gallery entry %d references file %q that this account did not upload", i, e.FileID))
		}
	}
	return nil
}

func (s *ProfileService) recordUploads(ctx context.Context, userID string, fileIDs []string) error {
	if len(fileIDs) == 0 {
		return nil
	}
	rows := make([]models.GalleryUpload, 0, len(fileIDs))
	for _, id := range fileIDs {
		rows = append(rows, models.GalleryUpload{FileID: id, UserID: userID})
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return transport("failed to record gallery upload", err)
	}
	return nil
}

// discardImages deletes files from storage along with their ownership records.
// Failures are logged only.
func (s *ProfileService) discardImages(ctx context.Context, fileIDs []string) {
	if len(fileIDs) == 0 {
		return
	}
	DeleteImages(ctx, s.images, s.logger, fileIDs)
	err := s.db.WithContext(ctx).Where("file_id IN ?", fileIDs).Delete(&models.GalleryUpload{}).Error
	if err != nil {
		s.logger.Warn("failed to forget gallery uploads", zap.Strings("fileIds", fileIDs), zap.Error(err))
	}
}
