package internal

import (
	"fmt"

	"SP-DOCS/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB(cfg *config.Config) error {
	dsn := cfg.Database.DSN()

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := autoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	fmt.Println("Database connected and migrated successfully")
	return nil
}

func autoMigrate() error {
	// Create tables only if they don't exist (preserve existing data)
	fmt.Println("Creating procurement_cases table if not exists...")
	result := DB.Exec(`
        CREATE TABLE IF NOT EXISTS procurement_cases (
            id varchar(191) PRIMARY KEY,
            organization_id varchar(191) NOT NULL,
            case_type varchar(50) NOT NULL,
            subtype varchar(50),
            title text NOT NULL,
            vendor_name text,
            fiscal_year int NOT NULL,
            is_backdated boolean DEFAULT false,
            created_at timestamp(3) NULL,
            updated_at timestamp(3) NULL,
            deleted_at timestamp(3) NULL
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create procurement_cases table: %w", result.Error)
	}

	DB.Exec("CREATE INDEX IF NOT EXISTS idx_procurement_cases_deleted_at ON procurement_cases(deleted_at)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_procurement_cases_organization_id ON procurement_cases(organization_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_procurement_cases_fiscal_year ON procurement_cases(fiscal_year)")

	fmt.Println("Creating running_number_counters table if not exists...")
	result = DB.Exec(`
        CREATE TABLE IF NOT EXISTS running_number_counters (
            id varchar(191) PRIMARY KEY,
            organization_id varchar(191) NOT NULL,
            fiscal_year int NOT NULL,
            document_type varchar(50) NOT NULL,
            sequence int NOT NULL DEFAULT 0,
            created_at timestamp(3) NULL,
            updated_at timestamp(3) NULL
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create running_number_counters table: %w", result.Error)
	}

	// The unique index is what makes concurrent first allocations safe:
	// both sides try the insert, one loses, the caller retries.
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_running_number_key ON running_number_counters(organization_id, fiscal_year, document_type)")

	fmt.Println("Creating documents table if not exists...")
	result = DB.Exec(`
        CREATE TABLE IF NOT EXISTS documents (
            id varchar(191) PRIMARY KEY,
            organization_id varchar(191) NOT NULL,
            case_id varchar(191) NOT NULL,
            pack_id varchar(100) NOT NULL,
            document_type varchar(50) NOT NULL,
            file_type varchar(10) NOT NULL,
            file_name text NOT NULL,
            file_path text,
            storage_path text,
            running_number varchar(50) NOT NULL,
            manual_number varchar(50),
            document_date timestamp(3) NULL,
            generated_at timestamp(3) NULL,
            created_at timestamp(3) NULL,
            updated_at timestamp(3) NULL,
            deleted_at timestamp(3) NULL
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create documents table: %w", result.Error)
	}

	DB.Exec("CREATE INDEX IF NOT EXISTS idx_documents_deleted_at ON documents(deleted_at)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_documents_case_id ON documents(case_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_documents_organization_id ON documents(organization_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_documents_generated_at ON documents(generated_at)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_documents_running_number ON documents(running_number)")

	fmt.Println("Creating audit_logs table if not exists...")
	result = DB.Exec(`
        CREATE TABLE IF NOT EXISTS audit_logs (
            id varchar(191) PRIMARY KEY,
            organization_id varchar(191) NOT NULL,
            actor_id varchar(191),
            action varchar(20) NOT NULL,
            entity_type varchar(50) NOT NULL,
            entity_id varchar(191),
            case_id varchar(191),
            before text,
            after text,
            reason text,
            ip_address varchar(45),
            user_agent text,
            created_at timestamp(3) NULL
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create audit_logs table: %w", result.Error)
	}

	DB.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_organization_id ON audit_logs(organization_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_entity_type ON audit_logs(entity_type)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_case_id ON audit_logs(case_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)")

	fmt.Println("Creating pack_overrides table if not exists...")
	result = DB.Exec(`
        CREATE TABLE IF NOT EXISTS pack_overrides (
            id varchar(191) PRIMARY KEY,
            organization_id varchar(191) NOT NULL,
            pack_id varchar(100) NOT NULL,
            is_active boolean DEFAULT true,
            updated_by varchar(191),
            created_at timestamp(3) NULL,
            updated_at timestamp(3) NULL
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create pack_overrides table: %w", result.Error)
	}

	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_pack_override_key ON pack_overrides(organization_id, pack_id)")

	fmt.Println("Creating statistics table if not exists...")
	result = DB.Exec(`
        CREATE TABLE IF NOT EXISTS statistics (
            id varchar(36) PRIMARY KEY,
            organization_id varchar(191) NOT NULL,
            event_type varchar(50) NOT NULL,
            pack_id varchar(100),
            date date NOT NULL,
            count bigint NOT NULL DEFAULT 0,
            created_at timestamp(3) NULL,
            updated_at timestamp(3) NULL,
            deleted_at timestamp(3) NULL
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create statistics table: %w", result.Error)
	}

	DB.Exec("CREATE INDEX IF NOT EXISTS idx_statistics_deleted_at ON statistics(deleted_at)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_statistics_event_type ON statistics(event_type)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_statistics_date ON statistics(date)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_statistics_unique ON statistics(organization_id, event_type, pack_id, date) WHERE deleted_at IS NULL")

	fmt.Println("Tables created/verified successfully")
	return nil
}

func CloseDB() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
