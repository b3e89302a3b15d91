package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/models"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

const projectColumns = `id, name, responsible_name, responsible_email, responsible_id,
		total_budget, budget_materials, budget_student_labor, budget_equipment,
		budget_activity, budget_allowance, created_at`

func scanProject(row pgx.Row, p *models.Project) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.ResponsibleName,
		&p.ResponsibleEmail,
		&p.ResponsibleID,
		&p.TotalBudget,
		&p.BudgetMaterials,
		&p.BudgetStudentLabor,
		&p.BudgetEquipment,
		&p.BudgetActivity,
		&p.BudgetAllowance,
		&p.CreatedAt,
	)
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	project.Prepare()

	query := `
		INSERT INTO projects (id, name, responsible_name, responsible_email, responsible_id,
			total_budget, budget_materials, budget_student_labor, budget_equipment,
			budget_activity, budget_allowance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.ResponsibleName,
		project.ResponsibleEmail,
		project.ResponsibleID,
		project.TotalBudget,
		project.BudgetMaterials,
		project.BudgetStudentLabor,
		project.BudgetEquipment,
		project.BudgetActivity,
		project.BudgetAllowance,
	).Scan(&project.CreatedAt)
	if err != nil {
		return storeError("insert project", err)
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var project models.Project
	if err := scanProject(r.pool.QueryRow(ctx, query, id), &project); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ledger.NotFoundError{Kind: "project", ID: id.String()}
		}
		return nil, storeError("query project", err)
	}
	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id`
	return r.query(ctx, "list projects", query)
}

// GetByResponsibleParty matches on email or on the stored identity id.
func (r *ProjectRepository) GetByResponsibleParty(ctx context.Context, email, identityID string) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE ($1 <> '' AND responsible_email = $1)
		   OR ($2 <> '' AND responsible_id = $2)
		ORDER BY created_at DESC, id`
	return r.query(ctx, "find projects by responsible party", query, models.NormalizeEmail(email), identityID)
}

func (r *ProjectRepository) query(ctx context.Context, op, query string, args ...any) ([]models.Project, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		if err := scanProject(rows, &project); err != nil {
			return nil, storeError(op, err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(op, err)
	}
	return projects, nil
}

// Update replaces every editable field in one statement so an allocation
// is never half-written.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	project.Prepare()

	query := `
		UPDATE projects SET
			name = $2, responsible_name = $3, responsible_email = $4, responsible_id = $5,
			total_budget = $6, budget_materials = $7, budget_student_labor = $8,
			budget_equipment = $9, budget_activity = $10, budget_allowance = $11
		WHERE id = $1
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.ResponsibleName,
		project.ResponsibleEmail,
		project.ResponsibleID,
		project.TotalBudget,
		project.BudgetMaterials,
		project.BudgetStudentLabor,
		project.BudgetEquipment,
		project.BudgetActivity,
		project.BudgetAllowance,
	).Scan(&project.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &ledger.NotFoundError{Kind: "project", ID: project.ID.String()}
		}
		return storeError("update project", err)
	}
	return nil
}

// Delete removes the project; ON DELETE CASCADE removes its expenses in
// the same statement.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return storeError("delete project", err)
	}

	if result.RowsAffected() == 0 {
		return &ledger.NotFoundError{Kind: "project", ID: id.String()}
	}
	return nil
}
