package letters

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"hrportal/internal/domain/hr"
)

// Letter types the portal can render.
const (
	TypeEmployment = "employment"
	TypeExperience = "experience"
	TypeOffer      = "offer"
)

var letterBodies = map[string]string{
	TypeEmployment: "This letter confirms that the employee named below is currently employed with the organisation.",
	TypeExperience: "This letter certifies the employment history of the employee named below with the organisation.",
	TypeOffer:      "We are pleased to extend an offer of employment to the candidate named below.",
}

// RenderLetter produces the letter document for an employee. The result is an
// opaque DocumentRef handed to generateLetter unmodified.
func RenderLetter(employee hr.EmployeeProfile, employeeName, letterType string, issued time.Time) (hr.DocumentRef, error) {
	body, ok := letterBodies[letterType]
	if !ok {
		return hr.DocumentRef{}, fmt.Errorf("unknown letter type %q", letterType)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, titleCase(letterType)+" Letter")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", issued.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.MultiCell(0, 6, body, "", "L", false)
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Employee ID: %s", employee.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Department: %s", employee.Department))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Joining Date: %s", employee.JoiningDate.Format("2006-01-02")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return hr.DocumentRef{}, err
	}
	return hr.DocumentFromBytes(buf.Bytes()), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// RenderPayslip produces the payslip document uploaded for an employee.
func RenderPayslip(employeeName, employeeID, month, year string) (hr.DocumentRef, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Employee ID: %s", employeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s %s", month, year))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return hr.DocumentRef{}, err
	}
	return hr.DocumentFromBytes(buf.Bytes()), nil
}
