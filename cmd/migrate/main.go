package main

import (
	"log"
	"os"
	"time"

	"maintdesk/internal/config"
	"maintdesk/internal/models"
	"maintdesk/pkg/utils"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Printf("Starting database migration at %s...", utils.FormatTime(time.Now()))

	err = db.AutoMigrate(
		&models.Asset{},
		&models.Technician{},
		&models.PreventivePlan{},
		&models.PlanTask{},
		&models.MaintenanceTicket{},
		&models.ChecklistItem{},
		&models.TicketActivity{},
		&models.UsedPart{},
		&models.TimeLog{},
		&models.PlanExecution{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migration completed successfully!")

	log.Println("Creating additional indexes...")

	// 为工单表创建复合索引
	db.Exec("CREATE INDEX IF NOT EXISTS idx_tickets_status_created ON maintenance_tickets(status, created_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_tickets_technician_status ON maintenance_tickets(technician_id, status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_tickets_asset_created ON maintenance_tickets(asset_id, created_at)")

	// 为计划表创建索引
	db.Exec("CREATE INDEX IF NOT EXISTS idx_plans_status_next ON preventive_plans(status, next_execution)")

	// 为检查项/活动表创建索引
	db.Exec("CREATE INDEX IF NOT EXISTS idx_checklist_ticket_position ON checklist_items(ticket_id, position)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_activities_ticket_created ON ticket_activities(ticket_id, created_at)")

	log.Println("Additional indexes created successfully!")

	if len(os.Args) > 1 && os.Args[1] == "--seed" {
		log.Println("Seeding default data...")
		seedDefaultData(db)
		log.Println("Default data seeded successfully!")
	}

	log.Println("Migration process completed!")
}

func seedDefaultData(db *gorm.DB) {
	// 示例资产
	var asset models.Asset
	if err := db.Where("serial_number = ?", "CMP-001").First(&asset).Error; err != nil {
		asset = models.Asset{
			ID:           uuid.NewString(),
			Name:         "Compressor de ar 01",
			Location:     "Setor A",
			SerialNumber: "CMP-001",
			Category:     "compressor",
			Status:       models.AssetStatusOperational,
		}
		if err := db.Create(&asset).Error; err != nil {
			log.Printf("Failed to seed asset: %v", err)
			return
		}
	}

	// 示例技师
	var technician models.Technician
	if err := db.Where("email = ?", "tecnico@maintdesk.local").First(&technician).Error; err != nil {
		technician = models.Technician{
			ID:     uuid.NewString(),
			Name:   "Técnico Padrão",
			Email:  "tecnico@maintdesk.local",
			Status: models.TechnicianStatusActive,
		}
		if err := db.Create(&technician).Error; err != nil {
			log.Printf("Failed to seed technician: %v", err)
			return
		}
	}

	// 示例预防性计划（每30天）
	var plan models.PreventivePlan
	if err := db.Where("name = ?", "Inspeção mensal do compressor").First(&plan).Error; err != nil {
		next := time.Now().UTC().AddDate(0, 0, 30)
		plan = models.PreventivePlan{
			ID:             uuid.NewString(),
			Name:           "Inspeção mensal do compressor",
			Description:    "Inspeção e lubrificação de rotina",
			Status:         models.PlanStatusActive,
			AssetIDs:       asset.ID,
			FrequencyType:  models.FrequencyTypeTime,
			FrequencyValue: 30,
			FrequencyUnit:  models.FrequencyUnitDays,
			NextExecution:  &next,
			Tasks: []models.PlanTask{
				{Position: 0, Description: "Verificar nível de óleo"},
				{Position: 1, Description: "Inspecionar correias"},
				{Position: 2, Description: "Drenar condensado do reservatório"},
			},
		}
		if err := db.Create(&plan).Error; err != nil {
			log.Printf("Failed to seed plan: %v", err)
		}
	}
}
