package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeCSV(t *testing.T) {
	input := "invoice_id,branch,city\n" +
		"1001,WALM003,San Antonio\n" +
		"1002,WALM064,Dallas\n"

	rows, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0][ColInvoiceID] != "1001" || rows[0][ColCity] != "San Antonio" {
		t.Errorf("Unexpected first row: %v", rows[0])
	}
	if rows[1][ColBranch] != "WALM064" {
		t.Errorf("Unexpected second row: %v", rows[1])
	}
}

func TestDecodeCSV_HeaderNormalization(t *testing.T) {
	input := "Invoice_ID, Branch ,CITY\n1001,WALM003,Dallas\n"

	rows, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rows[0][ColInvoiceID] != "1001" {
		t.Errorf("Expected mixed-case header to map to %q, got row %v", ColInvoiceID, rows[0])
	}
	if rows[0][ColBranch] != "WALM003" {
		t.Errorf("Expected padded header to map to %q, got row %v", ColBranch, rows[0])
	}
	if rows[0][ColCity] != "Dallas" {
		t.Errorf("Expected upper-case header to map to %q, got row %v", ColCity, rows[0])
	}
}

func TestDecodeCSV_TrimsFieldWhitespace(t *testing.T) {
	input := "invoice_id,branch\n 1001 ,  WALM003\n"

	rows, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rows[0][ColInvoiceID] != "1001" || rows[0][ColBranch] != "WALM003" {
		t.Errorf("Expected trimmed fields, got row %v", rows[0])
	}
}

func TestDecodeCSV_EmptyInput(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader(""))
	if err == nil {
		t.Fatal("Expected error for empty input, got nil")
	}
	if !errors.Is(err, ErrIngestion) {
		t.Errorf("Expected ErrIngestion, got %v", err)
	}
}

func TestDecodeCSV_MalformedRow(t *testing.T) {
	input := "invoice_id,branch\n\"1001,WALM003\n"

	_, err := DecodeCSV(strings.NewReader(input))
	if err == nil {
		t.Fatal("Expected error for malformed row, got nil")
	}
	if !errors.Is(err, ErrIngestion) {
		t.Errorf("Expected ErrIngestion, got %v", err)
	}
}

func TestDecodeCSV_HeaderOnly(t *testing.T) {
	rows, err := DecodeCSV(strings.NewReader("invoice_id,branch\n"))
	if err != nil {
		t.Fatalf("Expected no error for header-only input, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected 0 rows, got %d", len(rows))
	}
}

func TestDecodeDelimited_Semicolon(t *testing.T) {
	input := "invoice_id;branch\n1001;WALM003\n"

	rows, err := DecodeDelimited(strings.NewReader(input), ';')
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 1 || rows[0][ColBranch] != "WALM003" {
		t.Errorf("Unexpected rows: %v", rows)
	}
}
