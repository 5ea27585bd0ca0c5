package goldenseat

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"mulmarket/internal/models"
)

func seatRow(captain string, commission int64) Row {
	return Row{
		Captain:       captain,
		Mayor:         NotAssigned,
		Governor:      NotAssigned,
		Senator:       NotAssigned,
		VicePresident: NotAssigned,
		President:     NotAssigned,
		Commission:    decimal.NewFromInt(commission),
	}
}

func TestRowFromModelNotAssigned(t *testing.T) {
	row := RowFromModel(models.GoldenSeat{Captain: "Ana Cruz", Commission: decimal.NewFromInt(10)})
	if row.Captain != "Ana Cruz" {
		t.Fatalf("expected assigned captain, got %q", row.Captain)
	}
	for _, field := range []string{row.Mayor, row.Governor, row.Senator, row.VicePresident, row.President} {
		if field != NotAssigned {
			t.Fatalf("vacant role must read %q, got %q", NotAssigned, field)
		}
	}
}

func TestViewNoOpPreservesOrder(t *testing.T) {
	rows := []Row{seatRow("Charlie", 3), seatRow("Alpha", 1), seatRow("Bravo", 2)}

	result, err := View(rows, Options{})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("expected one implicit group, got %d", len(result.Groups))
	}
	for i, want := range []string{"Charlie", "Alpha", "Bravo"} {
		if got := result.Groups[0].Items[i].Captain; got != want {
			t.Fatalf("row %d: expected %s, got %s", i, want, got)
		}
	}
	if !result.GrandTotal.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("expected grand total 6, got %s", result.GrandTotal)
	}
}

func TestViewDoesNotMutateInput(t *testing.T) {
	rows := []Row{seatRow("Charlie", 3), seatRow("Alpha", 1)}

	if _, err := View(rows, Options{SortKey: KeyCaptain, SortDirection: Asc}); err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if rows[0].Captain != "Charlie" || rows[1].Captain != "Alpha" {
		t.Fatalf("input rows were mutated: %+v", rows)
	}
}

func TestViewFilterCaseInsensitive(t *testing.T) {
	rows := []Row{seatRow("Ana CRUZ", 1), seatRow("Ben Reyes", 2)}

	result, err := View(rows, Options{FilterText: "cruz"})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	items := result.Groups[0].Items
	if len(items) != 1 || items[0].Captain != "Ana CRUZ" {
		t.Fatalf("expected only the matching row, got %+v", items)
	}
}

func TestViewFilterMatchesCommission(t *testing.T) {
	rows := []Row{seatRow("Ana", 150), seatRow("Ben", 20)}

	result, err := View(rows, Options{FilterText: "150"})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	items := result.Groups[0].Items
	if len(items) != 1 || items[0].Captain != "Ana" {
		t.Fatalf("filter must match the commission field, got %+v", items)
	}
}

func TestViewSortStability(t *testing.T) {
	first := seatRow("first", 5)
	second := seatRow("second", 5)
	rows := []Row{first, second}

	result, err := View(rows, Options{SortKey: KeyCommission, SortDirection: Asc})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	items := result.Groups[0].Items
	if items[0].Captain != "first" || items[1].Captain != "second" {
		t.Fatalf("equal keys must preserve prior order, got %+v", items)
	}
}

func TestViewSortNumericDescending(t *testing.T) {
	rows := []Row{seatRow("small", 9), seatRow("big", 100), seatRow("mid", 20)}

	result, err := View(rows, Options{SortKey: KeyCommission, SortDirection: Desc})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	items := result.Groups[0].Items
	for i, want := range []string{"big", "mid", "small"} {
		if items[i].Captain != want {
			t.Fatalf("row %d: expected %s, got %s (lexicographic sort applied to numbers?)", i, want, items[i].Captain)
		}
	}
}

func TestViewGroupTotalsSumToGrandTotal(t *testing.T) {
	rows := []Row{
		seatRow("Ana", 10), seatRow("Ben", 20),
		seatRow("Ana", 5), seatRow("Cara", 7),
	}

	result, err := View(rows, Options{GroupKey: KeyCaptain})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}

	sum := decimal.Zero
	for _, g := range result.Groups {
		sum = sum.Add(g.TotalCommission)
	}
	if !sum.Equal(result.GrandTotal) {
		t.Fatalf("group totals %s != grand total %s", sum, result.GrandTotal)
	}
	if !result.GrandTotal.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("expected grand total 42, got %s", result.GrandTotal)
	}
}

func TestViewGroupAfterSort(t *testing.T) {
	rows := []Row{seatRow("X", 10), seatRow("Y", 20)}

	result, err := View(rows, Options{
		SortKey:       KeyCommission,
		SortDirection: Desc,
		GroupKey:      KeyCaptain,
	})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}

	if len(result.Groups) != 2 {
		t.Fatalf("expected two groups, got %d", len(result.Groups))
	}
	// Sorting happens before grouping, so Y (20) comes first.
	if result.Groups[0].Key != "Y" || result.Groups[1].Key != "X" {
		t.Fatalf("unexpected group order: %s, %s", result.Groups[0].Key, result.Groups[1].Key)
	}
	if !result.Groups[0].TotalCommission.Equal(decimal.NewFromInt(20)) ||
		!result.Groups[1].TotalCommission.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected group totals: %s, %s",
			result.Groups[0].TotalCommission, result.Groups[1].TotalCommission)
	}
	if !result.GrandTotal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected grand total 30, got %s", result.GrandTotal)
	}
}

func TestViewInvalidKeys(t *testing.T) {
	rows := []Row{seatRow("Ana", 1)}

	if _, err := View(rows, Options{SortKey: "salary"}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for sort key, got %v", err)
	}
	if _, err := View(rows, Options{GroupKey: "commission"}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("grouping by commission must be rejected, got %v", err)
	}
	if _, err := View(rows, Options{SortKey: KeyCaptain, SortDirection: "sideways"}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for direction, got %v", err)
	}
}
