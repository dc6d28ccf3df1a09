package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"salesagent-backend/internal/config"
	"salesagent-backend/internal/customers"
	"salesagent-backend/internal/db"
	"salesagent-backend/internal/employees"
	"salesagent-backend/internal/references"
	"salesagent-backend/internal/users"
)

type seedUser struct {
	Email       string
	DisplayName string
	Role        string
	PasswordEnv string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	userService := users.NewService(users.NewMongoRepository(cols.Users), cfg.Timezone)
	seedUsers := []seedUser{
		{Email: envOrDefault("ADMIN_EMAIL", "admin@salesagent.local"), DisplayName: "Administrator", Role: users.RoleAdmin, PasswordEnv: "ADMIN_PASSWORD"},
		{Email: envOrDefault("TEAM_EMAIL", "team@salesagent.local"), DisplayName: "Vertriebsteam", Role: users.RoleTeamMember, PasswordEnv: "TEAM_PASSWORD"},
	}
	for _, u := range seedUsers {
		password := os.Getenv(u.PasswordEnv)
		if password == "" {
			log.Printf("seed user: %s missing, skipping (%s)", u.Email, u.PasswordEnv)
			continue
		}
		_, err := userService.Create(ctx, users.CreateRequest{
			Email:       u.Email,
			DisplayName: u.DisplayName,
			Password:    password,
			Role:        u.Role,
		})
		if errors.Is(err, users.ErrDuplicateEmail) {
			log.Printf("seed user: %s exists", u.Email)
			continue
		}
		if err != nil {
			log.Fatalf("seed user error for %s: %v", u.Email, err)
		}
	}

	customerService := customers.NewService(customers.NewMongoRepository(cols.Customers), cfg.Timezone)
	referenceService := references.NewService(references.NewMongoRepository(cols.References), cfg.Timezone)
	_, total, err := customerService.List(ctx, customers.ListFilter{}, 1, 0)
	if err != nil {
		log.Fatal(err)
	}
	if total == 0 {
		for _, req := range seedCustomers() {
			c, err := customerService.Create(ctx, req)
			if err != nil {
				log.Fatalf("seed customer error for %s: %v", req.CompanyName, err)
			}
			if ref, ok := seedReferences[c.CompanyName]; ok {
				ref.CustomerID = c.ID
				ref.CustomerName = c.CompanyName
				if _, err := referenceService.Create(ctx, ref); err != nil {
					log.Fatalf("seed reference error for %s: %v", ref.ProjectTitle, err)
				}
			}
		}
	} else {
		log.Printf("seed customers: %d present, skipping", total)
	}

	employeeService := employees.NewService(employees.NewMongoRepository(cols.Employees), cfg.Timezone)
	_, total, err = employeeService.List(ctx, employees.ListFilter{}, 1, 0)
	if err != nil {
		log.Fatal(err)
	}
	if total == 0 {
		for _, req := range seedEmployees() {
			if _, err := employeeService.Create(ctx, req); err != nil {
				log.Fatalf("seed employee error for %s %s: %v", req.FirstName, req.LastName, err)
			}
		}
	} else {
		log.Printf("seed employees: %d present, skipping", total)
	}

	log.Println("seed completed")
}

func seedCustomers() []customers.UpsertRequest {
	return []customers.UpsertRequest{
		{
			CompanyName:   "Müller Logistik GmbH",
			Industry:      "Logistik",
			ContactPerson: "Anna Müller",
			ContactEmail:  "anna.mueller@mueller-logistik.example",
			ContactPhone:  "+49 40 1234567",
			Address:       &customers.Address{Street: "Hafenstraße 12", City: "Hamburg", PostalCode: "20457", Country: "Deutschland"},
		},
		{
			CompanyName:   "Stadtwerke Nordheim",
			Industry:      "Energie",
			ContactPerson: "Jonas Becker",
			ContactEmail:  "j.becker@stadtwerke-nordheim.example",
			Notes:         "Öffentliche Ausschreibungen, VOL/A beachten.",
		},
		{
			CompanyName:   "Finova Bank AG",
			Industry:      "Finanzdienstleistungen",
			ContactPerson: "Dr. Lea Schmitt",
			ContactEmail:  "lea.schmitt@finova.example",
			Website:       "https://finova.example",
		},
	}
}

var seedReferences = map[string]references.UpsertRequest{
	"Müller Logistik GmbH": {
		ProjectTitle:    "Migration der Lagerverwaltung in die Cloud",
		Description:     "Ablösung des On-Premise-WMS durch eine containerisierte Plattform auf Azure.",
		Industry:        "Logistik",
		Technologies:    []string{"Azure", "Kubernetes", "Terraform"},
		ProjectDuration: "9 Monate",
		CompletionDate:  "2025-06-30",
	},
	"Finova Bank AG": {
		ProjectTitle:    "CI/CD-Plattform für Kernbankensysteme",
		Description:     "Aufbau einer revisionssicheren Delivery-Pipeline mit automatisierten Compliance-Prüfungen.",
		Industry:        "Finanzdienstleistungen",
		Technologies:    []string{"GitLab", "ArgoCD", "Vault"},
		ProjectDuration: "6 Monate",
		CompletionDate:  "2025-11-15",
	},
}

func seedEmployees() []employees.UpsertRequest {
	years := func(n int) *int { return &n }
	return []employees.UpsertRequest{
		{
			FirstName:    "Markus",
			LastName:     "Weber",
			Email:        "markus.weber@salesagent.example",
			Position:     "Senior Cloud Architect",
			Department:   "Cloud & Infrastructure",
			Availability: employees.AvailabilityAvailable,
			Skills: []employees.Skill{
				{Name: "Azure", Level: "expert", YearsOfExperience: years(8)},
				{Name: "AWS", Level: "advanced", YearsOfExperience: years(5)},
			},
			Certifications: []employees.Certification{
				{Name: "Azure Solutions Architect Expert", Issuer: "Microsoft", DateObtained: "2023-04-12"},
			},
		},
		{
			FirstName:    "Sabine",
			LastName:     "Koch",
			Email:        "sabine.koch@salesagent.example",
			Position:     "DevOps Engineer",
			Department:   "Cloud & Infrastructure",
			Availability: employees.AvailabilityPartial,
			Skills: []employees.Skill{
				{Name: "Kubernetes", Level: "expert", YearsOfExperience: years(6)},
				{Name: "Terraform", Level: "advanced"},
			},
		},
		{
			FirstName:    "Tobias",
			LastName:     "Hartmann",
			Email:        "tobias.hartmann@salesagent.example",
			Position:     "Projektmanager",
			Department:   "Delivery",
			Availability: employees.AvailabilityAvailable,
			Skills: []employees.Skill{
				{Name: "Scrum", Level: "expert"},
			},
			Certifications: []employees.Certification{
				{Name: "PMP", Issuer: "PMI", DateObtained: "2021-09-01", ExpiryDate: "2027-09-01"},
			},
		},
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
