package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"hrportal/internal/domain/hr"
	"hrportal/internal/stub"
)

func main() {
	addr := getEnv("STUBD_ADDR", ":8080")
	secret := getEnv("STUBD_JWT_SECRET", "dev-secret")

	server := stub.New(secret)
	seed(server)

	log.Printf("HR stub service listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func seed(server *stub.Server) {
	if _, err := server.SeedUser("admin@example.com", "admin", hr.UserRoleAdmin); err != nil {
		log.Fatalf("seed admin failed: %v", err)
	}
	if _, err := server.SeedUser("user@example.com", "user", hr.UserRoleUser); err != nil {
		log.Fatalf("seed user failed: %v", err)
	}

	server.SeedEmployee(hr.EmployeeRecord{
		EmployeeID:    "EMP-0001",
		Role:          hr.RoleEmployee,
		Designation:   "Software Engineer",
		Department:    "Engineering",
		BusinessEmail: "jdoe@example.com",
		PhoneNumber:   "+1-555-0100",
		JoiningDate:   time.Date(2023, 4, 3, 0, 0, 0, 0, time.UTC),
	})
	server.SeedEmployee(hr.EmployeeRecord{
		EmployeeID:    "EMP-0002",
		Role:          hr.RoleManager,
		Designation:   "Engineering Manager",
		Department:    "Engineering",
		BusinessEmail: "asmith@example.com",
		PhoneNumber:   "+1-555-0101",
		JoiningDate:   time.Date(2021, 9, 13, 0, 0, 0, 0, time.UTC),
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
