package ui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caseview/adapters/resultstore"
	"caseview/app"
)

func writeResultsFolder(t *testing.T, rows string) string {
	t.Helper()
	root := t.TempDir()
	reports := filepath.Join(root, resultstore.ReportsDir)
	require.NoError(t, os.MkdirAll(reports, 0o755))

	header := "case_id,patient_id,fold,y_true,p_calibrated,uncertainty_std,risk_band\n"
	require.NoError(t, os.WriteFile(filepath.Join(reports, resultstore.IndexFileCSV), []byte(header+rows), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(reports, resultstore.MappingFile), []byte("case_id,patient_id\n"), 0o644))
	return root
}

func newTestServer(t *testing.T, svc *app.ResultsService) (*httptest.Server, *http.Client) {
	t.Helper()
	webApp, err := NewApp(svc, NewSessionStore(time.Hour))
	require.NoError(t, err)

	ts := httptest.NewServer(webApp.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	return ts, client
}

func connectedService(t *testing.T) (*app.ResultsService, string) {
	t.Helper()
	root := writeResultsFolder(t,
		"Case-01,PATIENT-A,0,1,0.82,0.04,HIGH\n"+
			"Case-02,PATIENT-B,1,0,0.12,0.09,LOW\n"+
			"Case-03,PATIENT-C,2,1,0.55,0.07,MODERATE\n")
	svc := app.NewResultsService(25)
	require.NoError(t, svc.Connect(root))
	return svc, root
}

func TestDashboardRenders(t *testing.T) {
	svc, _ := connectedService(t)
	ts, client := newTestServer(t, svc)

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "Case-01")
	assert.Contains(t, body, "Cases with Reports")
	assert.NotContains(t, body, "PATIENT-A")
}

func TestDashboardDisconnectedShowsGuidance(t *testing.T) {
	ts, client := newTestServer(t, app.NewResultsService(25))

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := readBody(t, resp)
	assert.Contains(t, body, "Connect Results")
	assert.Contains(t, body, "Demo Mode")
}

func TestAPICasesNeverLeaksPatientIDsOrPaths(t *testing.T) {
	svc, root := connectedService(t)
	ts, client := newTestServer(t, svc)

	resp, err := client.Get(ts.URL + "/api/cases")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := readBody(t, resp)
	assert.NotContains(t, body, "PATIENT-")
	assert.NotContains(t, body, "patient_id")
	assert.NotContains(t, body, root)

	var payload struct {
		Total int                      `json:"total"`
		Shown int                      `json:"shown"`
		Cases []map[string]interface{} `json:"cases"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, 3, payload.Total)
	assert.Equal(t, 3, payload.Shown)
	require.Len(t, payload.Cases, 3)
	assert.Equal(t, "Case-01", payload.Cases[0]["case_id"])
}

func TestFilterSessionRoundTrip(t *testing.T) {
	svc, _ := connectedService(t)
	ts, client := newTestServer(t, svc)

	// Narrow to HIGH only through the filter bar
	form := url.Values{"band": {"HIGH"}, "return": {"dashboard"}}
	resp, err := client.PostForm(ts.URL+"/filters", form)
	require.NoError(t, err)
	resp.Body.Close()

	// Filter state persists across subsequent requests in the session
	resp, err = client.Get(ts.URL + "/api/cases")
	require.NoError(t, err)
	var payload struct {
		Shown         int      `json:"shown"`
		ActiveFilters []string `json:"active_filters"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	assert.Equal(t, 1, payload.Shown)
	require.Len(t, payload.ActiveFilters, 1)
	assert.Contains(t, payload.ActiveFilters[0], "HIGH")

	// Reset restores the identity filter
	resp, err = client.PostForm(ts.URL+"/filters/reset", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/api/cases")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	assert.Equal(t, 3, payload.Shown)
	assert.Empty(t, payload.ActiveFilters)
}

func TestFilterRangeBounds(t *testing.T) {
	svc, _ := connectedService(t)
	ts, client := newTestServer(t, svc)

	form := url.Values{"prob_min": {"0.55"}, "prob_max": {"0.82"}}
	resp, err := client.PostForm(ts.URL+"/filters", form)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/api/cases")
	require.NoError(t, err)
	var payload struct {
		Cases []map[string]interface{} `json:"cases"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()

	ids := make([]string, 0, len(payload.Cases))
	for _, c := range payload.Cases {
		ids = append(ids, c["case_id"].(string))
	}
	// Bounds are inclusive: 0.82 and 0.55 both stay
	assert.ElementsMatch(t, []string{"Case-01", "Case-03"}, ids)
}

func TestConnectFailureRedirectsWithSanitizedError(t *testing.T) {
	ts, client := newTestServer(t, app.NewResultsService(25))

	emptyRoot := t.TempDir()
	resp, err := client.PostForm(ts.URL+"/connect", url.Values{"results_path": {emptyRoot}})
	require.NoError(t, err)
	defer resp.Body.Close()

	// Redirect lands back on the dashboard with a user-readable message
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "required result files are missing")
	assert.NotContains(t, body, emptyRoot)
}

func TestDemoModeBanner(t *testing.T) {
	ts, client := newTestServer(t, app.NewResultsService(15))

	resp, err := client.PostForm(ts.URL+"/demo", url.Values{})
	require.NoError(t, err)
	defer resp.Body.Close()

	body := readBody(t, resp)
	assert.Contains(t, body, "Synthetic demo data")
	assert.Contains(t, body, "DEMO")
}

func TestExportXLSXExcludesPatientColumn(t *testing.T) {
	svc, _ := connectedService(t)
	ts, client := newTestServer(t, svc)

	resp, err := client.Get(ts.URL + "/export.xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "caseview_export.xlsx")
}

func TestAPICaseByID(t *testing.T) {
	svc, _ := connectedService(t)
	ts, client := newTestServer(t, svc)

	resp, err := client.Get(ts.URL + "/api/cases/Case-02")
	require.NoError(t, err)
	var export map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&export))
	resp.Body.Close()

	assert.Equal(t, "Case-02", export["case_id"])
	assert.Equal(t, "LOW", export["risk_band"])
	_, hasPatient := export["patient_id"]
	assert.False(t, hasPatient)

	resp, err = client.Get(ts.URL + "/api/cases/Case-99")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCaseImageRouteGuardsIDs(t *testing.T) {
	svc, _ := connectedService(t)
	ts, client := newTestServer(t, svc)

	resp, err := client.Get(ts.URL + "/images/cases/Case-01.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no image written for Case-01")

	resp, err = client.Get(ts.URL + "/images/cases/" + url.PathEscape("..%2Fsecret") + ".png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
