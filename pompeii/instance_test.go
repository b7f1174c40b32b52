package pompeii

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/perlw/myrcube/logger"
)

func TestEnabledExtensions(t *testing.T) {
	required := []string{"VK_KHR_surface\x00", "VK_KHR_xcb_surface\x00"}
	available := []string{"VK_KHR_surface", "VK_KHR_xcb_surface", debugReportExtension}

	names, debug := enabledExtensions(required, nil, nil, logger.Discard())
	assert.Equal(t, required, names)
	assert.False(t, debug)

	names, debug = enabledExtensions(required, []string{debugReportExtension, "VK_KHR_surface", "VK_EXT_missing"}, available, logger.Discard())
	assert.Equal(t, []string{"VK_KHR_surface\x00", "VK_KHR_xcb_surface\x00", "VK_EXT_debug_report\x00"}, names)
	assert.True(t, debug)

	// Headless loaders require nothing.
	names, debug = enabledExtensions(nil, []string{"VK_EXT_missing"}, available, logger.Discard())
	assert.Empty(t, names)
	assert.False(t, debug)
}
