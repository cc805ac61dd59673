package service

import (
	"errors"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"

	"gorm.io/gorm"
)

type ProfileService struct {
	ProfileRepo *repository.ProfileRepository
	UserRepo    *repository.UserRepository
}

func NewProfileService(profileRepo *repository.ProfileRepository, userRepo *repository.UserRepository) *ProfileService {
	return &ProfileService{ProfileRepo: profileRepo, UserRepo: userRepo}
}

type InstructorReq struct {
	UserID   uint  `json:"userId" binding:"required"`
	FullTime *bool `json:"fullTime"`
}

// CreateInstructor attaches an instructor profile to the user and promotes
// learners to the instructor role.
func (s *ProfileService) CreateInstructor(req InstructorReq) (*model.Instructor, error) {
	user, err := s.findUser(req.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ProfileRepo.FindInstructorByUser(user.ID); err == nil {
		return nil, util.ErrProfileExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	instructor := &model.Instructor{UserID: user.ID, FullTime: true}
	if req.FullTime != nil {
		instructor.FullTime = *req.FullTime
	}
	if err := s.ProfileRepo.CreateInstructor(instructor); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrProfileExists
		}
		return nil, err
	}

	if user.Role == model.RoleLearner {
		if err := s.UserRepo.UpdateRole(user.ID, model.RoleInstructor); err != nil {
			return nil, err
		}
		user.Role = model.RoleInstructor
	}
	instructor.User = user
	return instructor, nil
}

type LearnerReq struct {
	UserID     uint   `json:"userId" binding:"required"`
	Occupation string `json:"occupation" binding:"omitempty,oneof=student developer data_scientist dba"`
	SocialLink string `json:"socialLink" binding:"omitempty,url,max=200"`
}

func (s *ProfileService) CreateLearner(req LearnerReq) (*model.Learner, error) {
	user, err := s.findUser(req.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ProfileRepo.FindLearnerByUser(user.ID); err == nil {
		return nil, util.ErrProfileExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	learner := &model.Learner{
		UserID:     user.ID,
		Occupation: model.OccupationStudent,
		SocialLink: req.SocialLink,
	}
	if req.Occupation != "" {
		learner.Occupation = model.Occupation(req.Occupation)
	}
	if err := s.ProfileRepo.CreateLearner(learner); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrProfileExists
		}
		return nil, err
	}
	learner.User = user
	return learner, nil
}

func (s *ProfileService) findUser(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
