package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "edit url",
			url:  "https://docs.google.com/spreadsheets/d/1AbC-d_9xYz/edit#gid=0",
			want: "1AbC-d_9xYz",
		},
		{
			name: "bare url",
			url:  "https://docs.google.com/spreadsheets/d/abc123",
			want: "abc123",
		},
		{
			name:    "not a sheet",
			url:     "https://drive.google.com/file/abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractSpreadsheetID(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnName(t *testing.T) {
	tests := map[int]string{1: "A", 17: "Q", 26: "Z", 27: "AA", 52: "AZ", 53: "BA", 702: "ZZ", 703: "AAA"}
	for n, want := range tests {
		assert.Equal(t, want, columnName(n), "column %d", n)
	}
}

func TestTitle(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Antiguedad_2024-03-01", Title("Antiguedad", day))
	assert.Equal(t, "Antiguedad_2024-03-01_detalle", Title("Antiguedad", day, "detalle"))
	assert.Equal(t, "Conciliacion-Q1_2024-03-01", Title("Conciliacion/Q1", day))
	assert.Equal(t, "CxC_2024-03-01", Title("[CxC]*?", day))

	long := Title(strings.Repeat("ñ", 120), day)
	assert.Equal(t, maxTitleLength, len([]rune(long)))
}

func TestA1(t *testing.T) {
	assert.Equal(t, "'Antiguedad_2024-03-01'!A1:C1", a1("Antiguedad_2024-03-01", "A1:C1"))
	assert.Equal(t, "'Agent''s'!A:B", a1("Agent's", "A:B"))
}

func TestNewSheetsService_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewSheetsService(ctx, "https://example.com/nope", []byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = NewSheetsService(ctx, "https://docs.google.com/spreadsheets/d/abc", nil)
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, err = NewSheetsService(ctx, "https://docs.google.com/spreadsheets/d/abc", []byte("not json"))
	assert.Error(t, err)
}

// fakeSheets serves the subset of the Sheets v4 REST API the exporter uses.
type fakeSheets struct {
	mu       sync.Mutex
	sheets   map[string]int64
	header   bool
	calls    []string
	appended [][]interface{}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req sheets.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Requests) > 0 && req.Requests[0].AddSheet != nil {
			title := req.Requests[0].AddSheet.Properties.Title
			f.sheets[title] = 42
			f.calls = append(f.calls, "addSheet")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"replies": []interface{}{
					map[string]interface{}{
						"addSheet": map[string]interface{}{
							"properties": map[string]interface{}{"sheetId": 42, "title": title},
						},
					},
				},
			})
			return
		}
		f.calls = append(f.calls, "format")
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodGet && !strings.Contains(path, "/values/"):
		f.calls = append(f.calls, "get")
		var list []interface{}
		for title, id := range f.sheets {
			list = append(list, map[string]interface{}{
				"properties": map[string]interface{}{"sheetId": id, "title": title},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"sheets": list})

	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "readHeader")
		if f.header {
			_, _ = w.Write([]byte(`{"values":[["Agente"]]}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "writeHeader")
		f.header = true
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.calls = append(f.calls, "append")
		f.appended = append(f.appended, vr.Values...)
		_, _ = w.Write([]byte(`{}`))

	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newFakeService(t *testing.T, fake *fakeSheets) *Service {
	t.Helper()

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	svc, err := newService(context.Background(), "sheet-1",
		option.WithHTTPClient(server.Client()),
		option.WithEndpoint(server.URL+"/"),
	)
	require.NoError(t, err)
	return svc
}

func TestWriteTable_NewSheet(t *testing.T) {
	fake := &fakeSheets{sheets: map[string]int64{}}
	svc := newFakeService(t, fake)

	err := svc.WriteTable(context.Background(), Table{
		Sheet:   "Antiguedad_2024-03-01",
		Headers: []string{"Agente", "Adeudo total"},
		Rows: [][]interface{}{
			{"AG-1", "1500.00"},
			{"AG-2", "320.50"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"get", "addSheet", "readHeader", "writeHeader", "format", "append"}, fake.calls)
	require.Len(t, fake.appended, 2)
	assert.Equal(t, "AG-1", fake.appended[0][0])
	assert.Contains(t, fake.sheets, "Antiguedad_2024-03-01")
}

func TestWriteTable_AppendKeepsHeader(t *testing.T) {
	fake := &fakeSheets{sheets: map[string]int64{"Conciliacion": 7}, header: true}
	svc := newFakeService(t, fake)

	err := svc.WriteTable(context.Background(), Table{
		Sheet:   "Conciliacion",
		Headers: []string{"Agente"},
		Rows:    [][]interface{}{{"AG-1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"get", "readHeader", "append"}, fake.calls)
}

func TestWriteTable_ReplaceClearsRows(t *testing.T) {
	fake := &fakeSheets{sheets: map[string]int64{"Conciliacion": 7}, header: true}
	svc := newFakeService(t, fake)

	err := svc.WriteTable(context.Background(), Table{
		Sheet:   "Conciliacion",
		Headers: []string{"Agente"},
		Mode:    Replace,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"get", "readHeader", "clear", "writeHeader", "format"}, fake.calls)
	assert.Empty(t, fake.appended)
}

func TestWriteTable_Validation(t *testing.T) {
	fake := &fakeSheets{sheets: map[string]int64{}}
	svc := newFakeService(t, fake)
	ctx := context.Background()

	err := svc.WriteTable(ctx, Table{Headers: []string{"A"}})
	assert.ErrorIs(t, err, ErrEmptySheetName)

	err = svc.WriteTable(ctx, Table{Sheet: "X"})
	assert.ErrorIs(t, err, ErrNoColumns)

	err = svc.WriteTable(ctx, Table{Sheet: "X", Headers: []string{"A"}, Rows: [][]interface{}{{"1", "2"}}})
	assert.ErrorIs(t, err, ErrRowTooWide)

	assert.Empty(t, fake.calls)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "append", Append.String())
	assert.Equal(t, "replace", Replace.String())
}
