package database

import (
	"encoding/json"
	"log"

	"inspeksi-backend/shared/config"
	"inspeksi-backend/shared/database/models"
	"inspeksi-backend/shared/database/models/billing"
	"inspeksi-backend/shared/database/models/inspection"
	utils "inspeksi-backend/shared/utils/auth"
)

// SeedDatabase seeds the database with initial data
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	rolesCreated, err := seedDefaultRoles()
	if err != nil {
		return err
	}

	plansCreated, err := seedDefaultPlans()
	if err != nil {
		return err
	}

	templatesCreated, err := seedDefaultTemplate()
	if err != nil {
		return err
	}

	if rolesCreated > 0 || plansCreated > 0 || templatesCreated > 0 {
		log.Printf("✅ Database seeding completed (%d roles, %d plans, %d templates created)",
			rolesCreated, plansCreated, templatesCreated)
	} else {
		log.Println("✅ Database seed data is up to date")
	}

	// Create super admin from config
	if err := CreateSuperAdminFromConfig(); err != nil {
		return err
	}

	return nil
}

// seedDefaultRoles creates the fixed role ladder
func seedDefaultRoles() (int, error) {
	roles := []models.Role{
		{Name: "Member", Slug: "member", Description: "Read-only access to own organization data", Level: models.LevelMember, IsDefault: true},
		{Name: "Inspector", Slug: "inspector", Description: "Submits and manages own inspection records", Level: models.LevelInspector},
		{Name: "Admin", Slug: "admin", Description: "Manages buildings, locations and templates", Level: models.LevelAdmin},
		{Name: "Super Admin", Slug: "super-admin", Description: "Manages users, roles and billing", Level: models.LevelSuperAdmin},
		{Name: "Owner", Slug: "owner", Description: "Full platform access", Level: models.LevelOwner},
	}

	created := 0
	for _, role := range roles {
		var existing models.Role
		result := DB.Where("slug = ?", role.Slug).First(&existing)
		if result.Error != nil {
			if err := DB.Create(&role).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}

// seedDefaultPlans creates the subscription plan catalog
func seedDefaultPlans() (int, error) {
	plans := []billing.Plan{
		{Name: "Basic", Slug: "basic", Description: "Single building, up to 10 locations", Price: 150000, DurationDays: 30, MaxBuildings: 1, MaxLocations: 10},
		{Name: "Standard", Slug: "standard", Description: "Up to 5 buildings, 50 locations", Price: 450000, DurationDays: 30, MaxBuildings: 5, MaxLocations: 50},
		{Name: "Enterprise", Slug: "enterprise", Description: "Unlimited buildings and locations", Price: 1500000, DurationDays: 30},
	}

	created := 0
	for _, plan := range plans {
		var existing billing.Plan
		result := DB.Where("slug = ?", plan.Slug).First(&existing)
		if result.Error != nil {
			if err := DB.Create(&plan).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}

// seedDefaultTemplate creates the default inspection checklist if none exists
func seedDefaultTemplate() (int, error) {
	var count int64
	if err := DB.Model(&inspection.Template{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	checklist := map[string]interface{}{
		"sections": []map[string]interface{}{
			{
				"title": "Cleanliness",
				"items": []map[string]interface{}{
					{"key": "floor_clean", "label": "Floor is clean and dry", "type": "rating", "max": 5},
					{"key": "toilet_clean", "label": "Toilets are clean", "type": "rating", "max": 5},
					{"key": "sink_clean", "label": "Sinks and mirrors are clean", "type": "rating", "max": 5},
					{"key": "odor", "label": "No unpleasant odor", "type": "boolean"},
				},
			},
			{
				"title": "Supplies",
				"items": []map[string]interface{}{
					{"key": "soap", "label": "Soap available", "type": "boolean"},
					{"key": "paper", "label": "Toilet paper available", "type": "boolean"},
					{"key": "towels", "label": "Hand towels or dryer working", "type": "boolean"},
				},
			},
		},
	}

	configJSON, err := json.Marshal(checklist)
	if err != nil {
		return 0, err
	}

	template := inspection.Template{
		Name:        "Standard Restroom Audit",
		Description: "Default restroom cleanliness checklist",
		Config:      configJSON,
		IsDefault:   true,
		IsActive:    true,
	}

	if err := DB.Create(&template).Error; err != nil {
		return 0, err
	}

	return 1, nil
}

// CreateSuperAdminFromConfig ensures the configured super admin user exists
func CreateSuperAdminFromConfig() error {
	cfg := config.GetConfig()

	var existing models.User
	if err := DB.Where("email = ?", cfg.SuperAdminEmail).First(&existing).Error; err == nil {
		return nil
	}

	var ownerRole models.Role
	if err := DB.Where("slug = ?", "owner").First(&ownerRole).Error; err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return err
	}

	superAdmin := models.User{
		Email:     cfg.SuperAdminEmail,
		Password:  hashedPassword,
		FirstName: "Super",
		LastName:  "Admin",
		Status:    "ACTIVE",
		RoleID:    &ownerRole.ID,
	}

	if err := DB.Create(&superAdmin).Error; err != nil {
		return err
	}

	log.Printf("✅ Super admin created: %s", cfg.SuperAdminEmail)
	return nil
}
