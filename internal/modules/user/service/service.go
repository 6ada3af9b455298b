package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"carelink.id/clinicapi/internal/auth"
	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/model"
	searchSvc "carelink.id/clinicapi/internal/modules/search/service"
	"carelink.id/clinicapi/internal/modules/user/dto"
	"carelink.id/clinicapi/internal/modules/user/repository"
	"carelink.id/clinicapi/pkg/apperror"
	"carelink.id/clinicapi/pkg/storage"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) error
	Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error)
	ObtainPair(ctx context.Context, input dto.LoginInput) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	repo    repository.UserRepository
	tokens  *auth.TokenService
	revoker auth.Revoker
}

func NewAuthService(repo repository.UserRepository, tokens *auth.TokenService, revoker auth.Revoker) AuthService {
	return &authService{
		repo:    repo,
		tokens:  tokens,
		revoker: revoker,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) error {
	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return apperror.New(http.StatusBadRequest, "username already taken", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return apperror.New(http.StatusBadRequest, "email already registered", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// The requested role is ignored here: every registration starts as a
	// patient account, so the default PatientProfile is created with it.
	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         model.RolePatient,
	}

	return s.repo.Create(ctx, user)
}

// authenticate resolves credentials to a user. Unknown username and wrong
// password both surface the same generic rejection.
func (s *authService) authenticate(ctx context.Context, input dto.LoginInput) (*model.User, error) {
	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	user, err := s.authenticate(ctx, input)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		User: dto.LoginUser{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
		Tokens: *pair,
	}, nil
}

func (s *authService) ObtainPair(ctx context.Context, input dto.LoginInput) (*auth.TokenPair, error) {
	user, err := s.authenticate(ctx, input)
	if err != nil {
		return nil, err
	}

	return s.tokens.IssuePair(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRefreshTokenRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, apperror.ErrUnauthorized
		}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	return s.tokens.IssuePair(user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Validate(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return apperror.New(http.StatusBadRequest, "invalid token", apperror.ErrBadRequest)
	}

	if s.revoker == nil {
		return nil
	}

	ttl := time.Duration(0)
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}

	return s.revoker.RevokeRefreshToken(ctx, claims.ID, ttl)
}

type UserService interface {
	List(ctx context.Context, id authz.Identity) ([]dto.UserResponse, error)
	Get(ctx context.Context, id authz.Identity, userID uuid.UUID) (*dto.UserResponse, error)
	Create(ctx context.Context, input dto.CreateUserInput) (*dto.UserResponse, error)
	Update(ctx context.Context, userID uuid.UUID, input dto.UpdateUserInput) (*dto.UserResponse, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	repo        repository.UserRepository
	fileStorage storage.FileStorage
	tokens      *auth.TokenService
	revoker     auth.Revoker
	search      searchSvc.DoctorSearchService
}

func NewUserService(repo repository.UserRepository, fileStorage storage.FileStorage, tokens *auth.TokenService, revoker auth.Revoker, search searchSvc.DoctorSearchService) UserService {
	return &userService{
		repo:        repo,
		fileStorage: fileStorage,
		tokens:      tokens,
		revoker:     revoker,
		search:      search,
	}
}

func (s *userService) List(ctx context.Context, id authz.Identity) ([]dto.UserResponse, error) {
	users, err := s.repo.FindAll(ctx, id)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}
	return responses, nil
}

func (s *userService) Get(ctx context.Context, id authz.Identity, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindVisibleByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "user not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) Create(ctx context.Context, input dto.CreateUserInput) (*dto.UserResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		DOB:          input.DOB,
		Role:         input.Role,
		IsStaff:      input.Role == model.RoleAdmin,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.indexDoctorProfile(ctx, user)

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, userID uuid.UUID, input dto.UpdateUserInput) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "user not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	oldRole := user.Role
	oldDoctorProfileID := uint(0)
	if user.DoctorProfile != nil {
		oldDoctorProfileID = user.DoctorProfile.ID
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashedPassword)
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.DOB != nil {
		user.DOB = input.DOB
	}
	if input.IsStaff != nil {
		user.IsStaff = *input.IsStaff
	}
	if input.IsSuperuser != nil {
		user.IsSuperuser = *input.IsSuperuser
	}

	orphaned, err := s.repo.Update(ctx, user, oldRole)
	if err != nil {
		return nil, err
	}

	if oldRole != user.Role {
		// Tokens issued before the swap carry a stale role and profile id.
		if s.revoker != nil {
			if err := s.revoker.RevokeUserClaims(ctx, user.ID, s.tokens.AccessTTL()); err != nil {
				logrus.WithError(err).WithField("user_id", user.ID).Warn("failed to invalidate issued claims")
			}
		}

		if s.search != nil && oldRole == model.RoleDoctor && oldDoctorProfileID != 0 {
			if err := s.search.RemoveDoctor(oldDoctorProfileID); err != nil {
				logrus.WithError(err).Warn("failed to remove doctor from search index")
			}
		}
		s.indexDoctorProfile(ctx, user)
	}

	s.releaseFiles(ctx, orphaned)

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, userID uuid.UUID) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(http.StatusNotFound, "user not found", apperror.ErrNotFound)
		}
		return err
	}

	doctorProfileID := uint(0)
	if user.DoctorProfile != nil {
		doctorProfileID = user.DoctorProfile.ID
	}

	orphaned, err := s.repo.Delete(ctx, userID)
	if err != nil {
		return err
	}

	if s.revoker != nil {
		if err := s.revoker.RevokeUserClaims(ctx, userID, s.tokens.AccessTTL()); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to invalidate issued claims")
		}
	}
	if s.search != nil && doctorProfileID != 0 {
		if err := s.search.RemoveDoctor(doctorProfileID); err != nil {
			logrus.WithError(err).Warn("failed to remove doctor from search index")
		}
	}

	s.releaseFiles(ctx, orphaned)
	return nil
}

func (s *userService) indexDoctorProfile(ctx context.Context, user *model.User) {
	if s.search == nil || user.DoctorProfile == nil {
		return
	}

	profile := *user.DoctorProfile
	profile.User = user
	if err := s.search.IndexDoctor(&profile); err != nil {
		logrus.WithError(err).Warn("failed to index doctor profile")
	}
}

// releaseFiles is best-effort cleanup of orphaned stored files. A failure
// here never fails the mutation that orphaned them.
func (s *userService) releaseFiles(ctx context.Context, fileURLs []string) {
	if s.fileStorage == nil {
		return
	}
	for _, fileURL := range fileURLs {
		if err := s.fileStorage.Delete(ctx, fileURL); err != nil {
			logrus.WithError(err).WithField("file_url", fileURL).Warn("failed to release stored file")
		}
	}
}
