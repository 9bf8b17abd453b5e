package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"hrportal/internal/authz"
	"hrportal/internal/client"
	"hrportal/internal/domain/hr"
	"hrportal/internal/letters"
	"hrportal/internal/platform/config"
	"hrportal/internal/session"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: hrpctl <command> [args]

commands:
  login <email> <password>
  logout
  whoami
  profile save <name> <role> [employeeId]
  employees
  employee <employeeId>
  leave balance <employeeId>
  leave requests <employeeId>
  leave submit <employeeId> <type> <start:YYYY-MM-DD> <end:YYYY-MM-DD>
  leave approve <employeeId> <requestId>
  payslips <employeeId>
  payslip upload <employeeId> <month> <year>
  letters <employeeId>
  letter generate <employeeId> <type>
  admin
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var provider session.Provider
	if os.Args[1] == "login" {
		if len(os.Args) != 4 {
			usage()
		}
		provider = session.NewPasswordProvider(cfg.IdentityURL, os.Args[2], os.Args[3], cfg.RequestTimeout)
	}

	app := client.New(cfg, provider, nil)
	if err := app.Init(ctx); err != nil {
		log.Fatalf("session init failed: %v", err)
	}

	switch os.Args[1] {
	case "login":
		if err := app.Login(ctx); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		id, _ := app.Session().Identity()
		fmt.Printf("logged in as %s (token expires %s)\n", id.Principal, id.ExpiresAt.Format(time.RFC3339))
		return
	case "logout":
		app.Logout()
		fmt.Println("logged out")
		return
	}

	if _, ok := app.Session().Identity(); !ok {
		log.Fatal("not logged in; run: hrpctl login <email> <password>")
	}
	if err := app.Connect(ctx); err != nil {
		log.Fatalf("connect failed: %v", err)
	}

	switch os.Args[1] {
	case "whoami":
		runWhoami(ctx, app)
	case "profile":
		runProfile(ctx, app, os.Args[2:])
	case "employees":
		runEmployees(ctx, app)
	case "employee":
		if len(os.Args) != 3 {
			usage()
		}
		runEmployee(ctx, app, os.Args[2])
	case "leave":
		runLeave(ctx, app, os.Args[2:])
	case "payslips":
		if len(os.Args) != 3 {
			usage()
		}
		runPayslips(ctx, app, os.Args[2])
	case "payslip":
		runPayslipUpload(ctx, app, os.Args[2:])
	case "letters":
		if len(os.Args) != 3 {
			usage()
		}
		runLetters(ctx, app, os.Args[2])
	case "letter":
		runLetterGenerate(ctx, app, os.Args[2:])
	case "admin":
		runAdmin(ctx, app)
	default:
		usage()
	}
}

func runWhoami(ctx context.Context, app *client.Client) {
	id, _ := app.Session().Identity()
	fmt.Printf("principal: %s\n", id.Principal)

	profile, err := app.CurrentUserProfile(ctx)
	if err != nil {
		log.Fatalf("profile fetch failed: %v", err)
	}
	if p, ok := profile.Get(); ok {
		fmt.Printf("name: %s\nrole: %s\n", p.Name, p.Role)
		if employeeID, linked := p.EmployeeID.Get(); linked {
			fmt.Printf("employeeId: %s\n", employeeID)
		}
	} else {
		fmt.Println("profile setup required")
	}
}

func runProfile(ctx context.Context, app *client.Client, args []string) {
	if len(args) < 3 || args[0] != "save" {
		usage()
	}
	role, err := hr.ParseRole(args[2])
	if err != nil {
		log.Fatalf("invalid role: %v", err)
	}
	profile := hr.UserProfile{Name: args[1], Role: role}
	if len(args) > 3 {
		profile.EmployeeID = hr.Some(args[3])
	}
	if err := app.SaveCallerUserProfile(ctx, profile); err != nil {
		log.Fatalf("save profile failed: %v", err)
	}
	fmt.Println("profile saved")
}

func runEmployees(ctx context.Context, app *client.Client) {
	employees, err := app.Employees(ctx)
	if err != nil {
		log.Fatalf("employees fetch failed: %v", err)
	}
	for _, e := range employees {
		fmt.Printf("%-10s %-12s %-12s %s\n", e.EmployeeID, e.Role, e.Department, e.BusinessEmail)
	}
}

func runEmployee(ctx context.Context, app *client.Client, employeeID string) {
	e, err := app.Employee(ctx, employeeID)
	if err != nil {
		log.Fatalf("employee fetch failed: %v", err)
	}
	fmt.Printf("employeeId: %s\nrole: %s\nstatus: %s\ndepartment: %s\nemail: %s\nphone: %s\njoined: %s\n",
		e.EmployeeID, e.Role, e.Status, e.Department, e.BusinessEmail, e.PhoneNumber, e.JoiningDate.Format("2006-01-02"))
}

func runLeave(ctx context.Context, app *client.Client, args []string) {
	if len(args) < 2 {
		usage()
	}
	switch args[0] {
	case "balance":
		balance, err := app.LeaveBalance(ctx, args[1])
		if err != nil {
			log.Fatalf("leave balance fetch failed: %v", err)
		}
		fmt.Printf("annual: %d\nsick: %d\ncasual: %d\nunpaid: %d\n", balance.Annual, balance.Sick, balance.Casual, balance.Unpaid)
	case "requests":
		requests, err := app.LeaveRequests(ctx, args[1])
		if err != nil {
			log.Fatalf("leave requests fetch failed: %v", err)
		}
		for _, req := range requests {
			fmt.Printf("#%d %-8s %s to %s  %s\n", req.RequestID, req.LeaveType,
				req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), req.Status)
		}
	case "submit":
		if len(args) != 5 {
			usage()
		}
		start, err1 := time.Parse("2006-01-02", args[3])
		end, err2 := time.Parse("2006-01-02", args[4])
		if err1 != nil || err2 != nil {
			log.Fatal("dates must be YYYY-MM-DD")
		}
		requestID, err := app.SubmitLeaveRequest(ctx, args[1], args[2], start, end)
		if err != nil {
			log.Fatalf("submit leave failed: %v", err)
		}
		fmt.Printf("submitted request #%d\n", requestID)
	case "approve":
		if len(args) != 3 {
			usage()
		}
		requestID, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			log.Fatal("request id must be a number")
		}
		if err := app.ApproveLeaveRequest(ctx, args[1], requestID); err != nil {
			log.Fatalf("approve leave failed: %v", err)
		}
		fmt.Println("approved")
	default:
		usage()
	}
}

func runPayslips(ctx context.Context, app *client.Client, employeeID string) {
	payslips, err := app.Payslips(ctx, employeeID)
	if err != nil {
		log.Fatalf("payslips fetch failed: %v", err)
	}
	for _, p := range payslips {
		fmt.Printf("#%d %s %s\n", p.PayslipID, p.Month, p.Year)
	}
}

func runPayslipUpload(ctx context.Context, app *client.Client, args []string) {
	if len(args) != 4 || args[0] != "upload" {
		usage()
	}
	employeeID, month, year := args[1], args[2], args[3]
	e, err := app.Employee(ctx, employeeID)
	if err != nil {
		log.Fatalf("employee fetch failed: %v", err)
	}
	document, err := letters.RenderPayslip(e.BusinessEmail, employeeID, month, year)
	if err != nil {
		log.Fatalf("render payslip failed: %v", err)
	}
	payslipID, err := app.UploadPayslip(ctx, employeeID, month, year, document)
	if err != nil {
		log.Fatalf("upload payslip failed: %v", err)
	}
	fmt.Printf("uploaded payslip #%d\n", payslipID)
}

func runLetters(ctx context.Context, app *client.Client, employeeID string) {
	out, err := app.Letters(ctx, employeeID)
	if err != nil {
		log.Fatalf("letters fetch failed: %v", err)
	}
	for _, l := range out {
		fmt.Printf("#%d %-12s %s\n", l.LetterID, l.LetterType, l.Created.Format("2006-01-02"))
	}
}

func runLetterGenerate(ctx context.Context, app *client.Client, args []string) {
	if len(args) != 3 || args[0] != "generate" {
		usage()
	}
	employeeID, letterType := args[1], args[2]
	e, err := app.Employee(ctx, employeeID)
	if err != nil {
		log.Fatalf("employee fetch failed: %v", err)
	}
	document, err := letters.RenderLetter(e, e.BusinessEmail, letterType, time.Now())
	if err != nil {
		log.Fatalf("render letter failed: %v", err)
	}
	if err := app.GenerateLetter(ctx, employeeID, letterType, document); err != nil {
		log.Fatalf("generate letter failed: %v", err)
	}
	fmt.Println("letter generated")
}

func runAdmin(ctx context.Context, app *client.Client) {
	isAdmin, err := app.IsAdmin(ctx)
	if err != nil {
		log.Fatalf("admin check failed: %v", err)
	}
	fmt.Printf("admin: %v\n", isAdmin)
	fmt.Printf("admin panel: %s\n", app.CanPerform(authz.CapViewAdminPanel))
}
