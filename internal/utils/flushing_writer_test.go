package utils_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/wpmigrate/internal/utils"
)

func TestFlushingWriterFlushesBufferedWriters(testInstance *testing.T) {
	var destination bytes.Buffer
	bufferedWriter := bufio.NewWriterSize(&destination, 4096)

	flushingWriter := utils.NewFlushingWriter(bufferedWriter)
	written, writeError := flushingWriter.Write([]byte("id: wp_wordpress_authors\n"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 25, written)

	require.Equal(testInstance, "id: wp_wordpress_authors\n", destination.String())
	require.Equal(testInstance, int64(25), flushingWriter.BytesWritten())
	require.Same(testInstance, flushingWriter, utils.NewFlushingWriter(flushingWriter))
}

func TestFlushingWriterToleratesMissingWriter(testInstance *testing.T) {
	require.Nil(testInstance, utils.NewFlushingWriter(nil))

	var flushingWriter *utils.FlushingWriter
	written, writeError := flushingWriter.Write([]byte("ignored"))
	require.NoError(testInstance, writeError)
	require.Zero(testInstance, written)
	require.Zero(testInstance, flushingWriter.BytesWritten())
}

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, missing := accessor.ConfigurationFilePath(testInstance.Context())
	require.False(testInstance, missing)

	executionContext := accessor.WithLoadedConfiguration(nil, utils.LoadedConfiguration{
		ConfigFileUsed:         "/srv/migrations/config.yaml",
		ConfigurationDirectory: "/srv/migrations",
	})
	configurationFilePath, available := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, available)
	require.Equal(testInstance, "/srv/migrations/config.yaml", configurationFilePath)

	emptyContext := accessor.WithLoadedConfiguration(testInstance.Context(), utils.LoadedConfiguration{})
	_, emptyAvailable := accessor.ConfigurationFilePath(emptyContext)
	require.False(testInstance, emptyAvailable)
}
