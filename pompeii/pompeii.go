// Package pompeii implements the driver interfaces on Vulkan.
package pompeii

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

func inStringSlice(slice []string, val string) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}

func vkString(str string) string {
	if len(str) == 0 {
		return "\x00"
	} else if str[len(str)-1] != '\x00' {
		return str + "\x00"
	}
	return str
}

// Init resolves the Vulkan entry points through GLFW, so a window must exist
// first.
func Init() error {
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "could not initialize vulkan")
	}
	return nil
}

// check turns a failed result into an error, mapping the results callers
// act on to the driver sentinels.
func check(result vk.Result, what string) error {
	switch result {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate:
		return errors.Wrap(driver.ErrOutOfDate, what)
	case vk.ErrorDeviceLost:
		return errors.Wrap(driver.ErrDeviceLost, what)
	case vk.Timeout, vk.NotReady:
		return errors.Wrap(driver.ErrTimeout, what)
	default:
		return errors.Wrap(vk.Error(result), what)
	}
}

func getAvailableInstanceExtensions() ([]string, error) {
	var count uint32
	if result := vk.EnumerateInstanceExtensionProperties("", &count, nil); result != vk.Success {
		return nil, errors.New("could not count instance extensions")
	}
	extensions := make([]vk.ExtensionProperties, count)
	if result := vk.EnumerateInstanceExtensionProperties("", &count, extensions); result != vk.Success {
		return nil, errors.New("could not get instance extensions")
	}

	names := make([]string, count)
	for t, ext := range extensions {
		ext.Deref()
		names[t] = vk.ToString(ext.ExtensionName[:])
	}
	return names, nil
}

func getAvailableInstanceLayers() ([]string, error) {
	var count uint32
	if result := vk.EnumerateInstanceLayerProperties(&count, nil); result != vk.Success {
		return nil, errors.New("could not count instance layers")
	}
	layers := make([]vk.LayerProperties, count)
	if result := vk.EnumerateInstanceLayerProperties(&count, layers); result != vk.Success {
		return nil, errors.New("could not get instance layers")
	}

	names := make([]string, count)
	for t, layer := range layers {
		layer.Deref()
		names[t] = vk.ToString(layer.LayerName[:])
	}
	return names, nil
}

func getAvailableDeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if result := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil); result != vk.Success {
		return nil, errors.New("could not count device extensions")
	}
	extensions := make([]vk.ExtensionProperties, count)
	if result := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, extensions); result != vk.Success {
		return nil, errors.New("could not get device extensions")
	}

	names := make([]string, count)
	for t, ext := range extensions {
		ext.Deref()
		names[t] = vk.ToString(ext.ExtensionName[:])
	}
	return names, nil
}

var (
	_ driver.Instance = (*Instance)(nil)
	_ driver.GPU      = (*GPU)(nil)
	_ driver.Device   = (*Device)(nil)
	_ driver.Surface  = (*WindowSurface)(nil)
	_ driver.Queue    = (*Queue)(nil)
	_ driver.Fence    = (*Fence)(nil)
)
