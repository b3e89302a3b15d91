package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/models"
)

type ProjectService struct {
	store  ledger.Store
	logger *slog.Logger
}

func NewProjectService(store ledger.Store, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		store:  store,
		logger: logger,
	}
}

// ProjectRequest is the body of a create or full-replacement edit.
type ProjectRequest struct {
	Name               string  `json:"name" binding:"required"`
	ResponsibleName    *string `json:"responsible_name,omitempty"`
	ResponsibleEmail   string  `json:"responsible_email" binding:"required"`
	ResponsibleID      *string `json:"responsible_id,omitempty"`
	TotalBudget        int64   `json:"total_budget"`
	BudgetMaterials    int64   `json:"budget_materials"`
	BudgetStudentLabor int64   `json:"budget_student_labor"`
	BudgetEquipment    int64   `json:"budget_equipment"`
	BudgetActivity     int64   `json:"budget_activity"`
	BudgetAllowance    int64   `json:"budget_allowance"`
}

func (r ProjectRequest) project() *models.Project {
	return &models.Project{
		Name:             r.Name,
		ResponsibleName:  r.ResponsibleName,
		ResponsibleEmail: r.ResponsibleEmail,
		ResponsibleID:    r.ResponsibleID,
		Allocation: models.Allocation{
			TotalBudget:        r.TotalBudget,
			BudgetMaterials:    r.BudgetMaterials,
			BudgetStudentLabor: r.BudgetStudentLabor,
			BudgetEquipment:    r.BudgetEquipment,
			BudgetActivity:     r.BudgetActivity,
			BudgetAllowance:    r.BudgetAllowance,
		},
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, req ProjectRequest) (*models.Project, error) {
	project := req.project()
	project.Prepare()

	if err := ledger.ValidateProject(project); err != nil {
		return nil, err
	}

	if err := s.store.InsertProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	s.logger.Info("project created", "project_id", project.ID, "total_budget", project.TotalBudget)
	return project, nil
}

// UpdateProject replaces every editable field of the project, allocation
// included. A rejected allocation leaves the stored project untouched.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID string, req ProjectRequest) (*models.Project, error) {
	id, err := parseID("project", projectID)
	if err != nil {
		return nil, err
	}

	project := req.project()
	project.ID = id
	project.Prepare()

	if err := ledger.ValidateProject(project); err != nil {
		return nil, err
	}

	if err := s.store.UpdateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.logger.Info("project updated", "project_id", project.ID, "total_budget", project.TotalBudget)
	return project, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, projectID string) (*models.Project, error) {
	id, err := parseID("project", projectID)
	if err != nil {
		return nil, err
	}

	project, err := s.store.QueryProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes the project and all of its expenses.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID string) error {
	id, err := parseID("project", projectID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Info("project deleted", "project_id", id)
	return nil
}
