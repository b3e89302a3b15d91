package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExpenseChangesChannel is the NOTIFY channel fed by the expenses trigger.
const ExpenseChangesChannel = "expense_changes"

func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		createCategoryType,
		createProjectsTable,
		createExpensesTable,
		createExpenseNotifyTrigger,
	}

	for i, migration := range migrations {
		log.Printf("Running migration %d/%d", i+1, len(migrations))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("All migrations completed successfully")
	return nil
}

const createCategoryType = `
DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'expense_category_t') THEN
    CREATE TYPE expense_category_t AS ENUM ('materials', 'student_labor', 'equipment', 'activity', 'allowance');
  END IF;
END$$;
`

const createProjectsTable = `
CREATE TABLE IF NOT EXISTS projects (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  name TEXT NOT NULL CHECK (name <> ''),
  responsible_name TEXT,
  responsible_email TEXT NOT NULL,
  responsible_id TEXT,
  total_budget BIGINT NOT NULL CHECK (total_budget >= 0),
  budget_materials BIGINT NOT NULL DEFAULT 0 CHECK (budget_materials >= 0),
  budget_student_labor BIGINT NOT NULL DEFAULT 0 CHECK (budget_student_labor >= 0),
  budget_equipment BIGINT NOT NULL DEFAULT 0 CHECK (budget_equipment >= 0),
  budget_activity BIGINT NOT NULL DEFAULT 0 CHECK (budget_activity >= 0),
  budget_allowance BIGINT NOT NULL DEFAULT 0 CHECK (budget_allowance >= 0),
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  CONSTRAINT projects_allocation_within_total CHECK (
    budget_materials + budget_student_labor + budget_equipment + budget_activity + budget_allowance <= total_budget
  )
);

CREATE INDEX IF NOT EXISTS idx_projects_responsible_email ON projects(responsible_email);
CREATE INDEX IF NOT EXISTS idx_projects_responsible_id ON projects(responsible_id);
CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);
`

const createExpensesTable = `
CREATE TABLE IF NOT EXISTS expenses (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  seq BIGINT GENERATED ALWAYS AS IDENTITY,
  project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  category expense_category_t NOT NULL,
  amount BIGINT NOT NULL CHECK (amount >= 0),
  description TEXT NOT NULL CHECK (description <> ''),
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_expenses_project_created ON expenses(project_id, created_at DESC, seq DESC);
`

// The trigger announces every row change so sessions can recompute. The
// cascade from a project delete fires it once per removed expense.
const createExpenseNotifyTrigger = `
CREATE OR REPLACE FUNCTION notify_expense_change()
RETURNS trigger AS $$
DECLARE
  rec RECORD;
BEGIN
  IF TG_OP = 'DELETE' THEN
    rec := OLD;
  ELSE
    rec := NEW;
  END IF;
  PERFORM pg_notify('` + ExpenseChangesChannel + `', json_build_object(
    'op', TG_OP,
    'project_id', rec.project_id,
    'expense_id', rec.id
  )::text);
  RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS expenses_notify ON expenses;

CREATE TRIGGER expenses_notify
AFTER INSERT OR UPDATE OR DELETE ON expenses
FOR EACH ROW
EXECUTE FUNCTION notify_expense_change();
`
