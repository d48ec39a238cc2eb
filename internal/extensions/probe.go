package extensions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	probeChunkSizeConstant                 = 32 * 1024
	fileSchemeConstant                     = "file"
	httpSchemeConstant                     = "http"
	httpsSchemeConstant                    = "https"
	probeLocatorRequiredMessageConstant    = "export locator is required"
	probeMarkerRequiredMessageConstant     = "probe marker is required"
	probeFileSystemRequiredMessageConstant = "export probe file system is required"
	probeOpenErrorTemplateConstant         = "unable to open export %s: %w"
	probeRequestErrorTemplateConstant      = "unable to build export request for %s: %w"
	probeFetchErrorTemplateConstant        = "unable to fetch export %s: %w"
	probeStatusErrorTemplateConstant       = "export %s responded with status %d"
	probeSchemeErrorTemplateConstant       = "unsupported export locator scheme %q"
	probeReadErrorTemplateConstant         = "unable to read export %s: %w"
	defaultProbeRetryMaxConstant           = 2
	defaultProbeRetryWaitMinimumConstant   = 200 * time.Millisecond
	defaultProbeRetryWaitMaximumConstant   = 2 * time.Second
)

// ExportProbeOptions tunes remote export retrieval.
type ExportProbeOptions struct {
	RetryMax         int
	RetryWaitMinimum time.Duration
	RetryWaitMaximum time.Duration
	HTTPClient       *http.Client
}

// DefaultExportProbeOptions returns the retry policy used by the command line.
func DefaultExportProbeOptions() ExportProbeOptions {
	return ExportProbeOptions{
		RetryMax:         defaultProbeRetryMaxConstant,
		RetryWaitMinimum: defaultProbeRetryWaitMinimumConstant,
		RetryWaitMaximum: defaultProbeRetryWaitMaximumConstant,
	}
}

// ExportProbe scans a WordPress export for marker strings. Local paths and file:// locators are
// read through the file system; http(s):// locators are fetched with retries.
type ExportProbe struct {
	fileSystem afero.Fs
	httpClient *retryablehttp.Client
}

// NewExportProbe creates a probe reading local exports from fileSystem.
func NewExportProbe(fileSystem afero.Fs, logger *zap.Logger, options ExportProbeOptions) *ExportProbe {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = options.RetryMax
	if options.RetryWaitMinimum > 0 {
		httpClient.RetryWaitMin = options.RetryWaitMinimum
	}
	if options.RetryWaitMaximum > 0 {
		httpClient.RetryWaitMax = options.RetryWaitMaximum
	}
	if options.HTTPClient != nil {
		httpClient.HTTPClient = options.HTTPClient
	}
	httpClient.Logger = retryLogger{logger: logger.Sugar()}

	return &ExportProbe{fileSystem: fileSystem, httpClient: httpClient}
}

// Contains reports whether the export at locator contains marker.
func (probe *ExportProbe) Contains(executionContext context.Context, locator string, marker string) (bool, error) {
	if len(marker) == 0 {
		return false, errors.New(probeMarkerRequiredMessageConstant)
	}

	exportReader, openError := probe.open(executionContext, strings.TrimSpace(locator))
	if openError != nil {
		return false, openError
	}
	defer exportReader.Close()

	found, scanError := containsMarker(exportReader, []byte(marker))
	if scanError != nil {
		return false, fmt.Errorf(probeReadErrorTemplateConstant, locator, scanError)
	}
	return found, nil
}

func (probe *ExportProbe) open(executionContext context.Context, locator string) (io.ReadCloser, error) {
	if len(locator) == 0 {
		return nil, errors.New(probeLocatorRequiredMessageConstant)
	}

	parsedLocator, parseError := url.Parse(locator)
	if parseError != nil || len(parsedLocator.Scheme) <= 1 {
		return probe.openFile(locator)
	}

	switch strings.ToLower(parsedLocator.Scheme) {
	case fileSchemeConstant:
		return probe.openFile(parsedLocator.Path)
	case httpSchemeConstant, httpsSchemeConstant:
		return probe.fetch(executionContext, locator)
	default:
		return nil, fmt.Errorf(probeSchemeErrorTemplateConstant, parsedLocator.Scheme)
	}
}

func (probe *ExportProbe) openFile(filePath string) (io.ReadCloser, error) {
	if probe.fileSystem == nil {
		return nil, errors.New(probeFileSystemRequiredMessageConstant)
	}
	exportFile, openError := probe.fileSystem.Open(filePath)
	if openError != nil {
		return nil, fmt.Errorf(probeOpenErrorTemplateConstant, filePath, openError)
	}
	return exportFile, nil
}

func (probe *ExportProbe) fetch(executionContext context.Context, locator string) (io.ReadCloser, error) {
	request, requestError := retryablehttp.NewRequestWithContext(executionContext, http.MethodGet, locator, nil)
	if requestError != nil {
		return nil, fmt.Errorf(probeRequestErrorTemplateConstant, locator, requestError)
	}

	response, responseError := probe.httpClient.Do(request)
	if responseError != nil {
		return nil, fmt.Errorf(probeFetchErrorTemplateConstant, locator, responseError)
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		response.Body.Close()
		return nil, fmt.Errorf(probeStatusErrorTemplateConstant, locator, response.StatusCode)
	}
	return response.Body, nil
}

// containsMarker streams reader in fixed chunks, carrying the tail of each chunk so that markers
// spanning a chunk boundary are found.
func containsMarker(reader io.Reader, marker []byte) (bool, error) {
	carriedLength := len(marker) - 1
	buffer := make([]byte, probeChunkSizeConstant+carriedLength)
	filledLength := 0

	for {
		readCount, readError := reader.Read(buffer[filledLength:])
		window := buffer[:filledLength+readCount]
		if bytes.Contains(window, marker) {
			return true, nil
		}
		if errors.Is(readError, io.EOF) {
			return false, nil
		}
		if readError != nil {
			return false, readError
		}

		keptLength := carriedLength
		if keptLength > len(window) {
			keptLength = len(window)
		}
		copy(buffer, window[len(window)-keptLength:])
		filledLength = keptLength
	}
}

type retryLogger struct {
	logger *zap.SugaredLogger
}

func (adapter retryLogger) Error(message string, keysAndValues ...interface{}) {
	adapter.logger.Warnw(message, keysAndValues...)
}

func (adapter retryLogger) Warn(message string, keysAndValues ...interface{}) {
	adapter.logger.Warnw(message, keysAndValues...)
}

func (adapter retryLogger) Info(message string, keysAndValues ...interface{}) {
	adapter.logger.Debugw(message, keysAndValues...)
}

func (adapter retryLogger) Debug(message string, keysAndValues ...interface{}) {
	adapter.logger.Debugw(message, keysAndValues...)
}
