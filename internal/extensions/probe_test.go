package extensions_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/wpmigrate/internal/extensions"
)

const (
	exportPathConstant     = "/exports/site.xml"
	yoastMarkerConstant    = "_yoast_wpseo_title"
	exportDocumentConstant = `<rss><channel><item><wp:postmeta><wp:meta_key>_yoast_wpseo_title</wp:meta_key></wp:postmeta></item></channel></rss>`
)

func TestExportProbeLocalFiles(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, exportPathConstant, []byte(exportDocumentConstant), 0o644))

	boundaryPadding := strings.Repeat("x", 32*1024+10)
	require.NoError(testInstance, afero.WriteFile(fileSystem, "/exports/boundary.xml", []byte(boundaryPadding+yoastMarkerConstant), 0o644))
	require.NoError(testInstance, afero.WriteFile(fileSystem, "/exports/plain.xml", []byte(strings.Repeat("<item/>", 20000)), 0o644))

	probe := extensions.NewExportProbe(fileSystem, nil, extensions.ExportProbeOptions{})

	testCases := []struct {
		name          string
		locator       string
		expectedFound bool
		expectError   bool
	}{
		{name: "plain path", locator: exportPathConstant, expectedFound: true},
		{name: "file scheme", locator: "file://" + exportPathConstant, expectedFound: true},
		{name: "marker across chunk boundary", locator: "/exports/boundary.xml", expectedFound: true},
		{name: "marker absent", locator: "/exports/plain.xml"},
		{name: "missing file", locator: "/exports/absent.xml", expectError: true},
		{name: "blank locator", locator: " ", expectError: true},
		{name: "unsupported scheme", locator: "public://site.xml", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			found, probeError := probe.Contains(context.Background(), testCase.locator, yoastMarkerConstant)
			if testCase.expectError {
				require.Error(testingInstance, probeError)
				return
			}
			require.NoError(testingInstance, probeError)
			require.Equal(testingInstance, testCase.expectedFound, found)
		})
	}
}

func TestExportProbeRemoteExports(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/export.xml":
			_, _ = responseWriter.Write([]byte(exportDocumentConstant))
		case "/empty.xml":
			_, _ = responseWriter.Write([]byte("<rss/>"))
		default:
			http.NotFound(responseWriter, request)
		}
	}))
	defer server.Close()

	probe := extensions.NewExportProbe(afero.NewMemMapFs(), nil, extensions.ExportProbeOptions{HTTPClient: server.Client()})

	found, probeError := probe.Contains(context.Background(), server.URL+"/export.xml", yoastMarkerConstant)
	require.NoError(testInstance, probeError)
	require.True(testInstance, found)

	found, probeError = probe.Contains(context.Background(), server.URL+"/empty.xml", yoastMarkerConstant)
	require.NoError(testInstance, probeError)
	require.False(testInstance, found)

	_, probeError = probe.Contains(context.Background(), server.URL+"/missing.xml", yoastMarkerConstant)
	require.Error(testInstance, probeError)
}

func TestExportProbeRequiresMarker(testInstance *testing.T) {
	probe := extensions.NewExportProbe(afero.NewMemMapFs(), nil, extensions.DefaultExportProbeOptions())
	_, probeError := probe.Contains(context.Background(), exportPathConstant, "")
	require.Error(testInstance, probeError)
}
