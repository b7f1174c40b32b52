package pompeii

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/logger"
)

const debugReportExtension = "VK_EXT_debug_report"

type Instance struct {
	instance vk.Instance
	dbg      vk.DebugReportCallback
	log      logger.Logger
}

// NewInstance creates the Vulkan instance with the requested layers and
// extensions on top of the ones window surfaces need. Unavailable ones are
// skipped with a warning; the debug report callback is installed when its
// extension is among them.
func NewInstance(appName, engineName string, layers, extensions []string, log logger.Logger) (*Instance, error) {
	i := Instance{
		dbg: vk.NullDebugReportCallback,
		log: log,
	}

	activeLayers := []string{}
	if layers != nil {
		available, err := getAvailableInstanceLayers()
		if err != nil {
			return nil, errors.Wrap(err, "could not get layers")
		}
		for _, name := range layers {
			if inStringSlice(available, name) {
				activeLayers = append(activeLayers, vkString(name))
			} else {
				log.Warn("missing layer %s", name)
			}
		}
	}

	var available []string
	if extensions != nil {
		var err error
		if available, err = getAvailableInstanceExtensions(); err != nil {
			return nil, errors.Wrap(err, "could not get instance extensions")
		}
	}
	activeExtensions, debug := enabledExtensions(vk.GetRequiredInstanceExtensions(), extensions, available, log)

	instanceInfo := vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			PApplicationName:   vkString(appName),
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PEngineName:        vkString(engineName),
			EngineVersion:      vk.MakeVersion(0, 0, 1),
			ApiVersion:         vk.ApiVersion10,
		},
		EnabledLayerCount:       uint32(len(activeLayers)),
		PpEnabledLayerNames:     activeLayers,
		EnabledExtensionCount:   uint32(len(activeExtensions)),
		PpEnabledExtensionNames: activeExtensions,
	}

	if err := check(vk.CreateInstance(&instanceInfo, nil, &i.instance), "could not create instance"); err != nil {
		return nil, err
	}

	vk.InitInstance(i.instance)

	log.Log("Instance created; layers: %v, extensions: %v", activeLayers, activeExtensions)

	if debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: i.debugReport,
		}
		if err := check(vk.CreateDebugReportCallback(i.instance, &debugCreateInfo, nil, &i.dbg), "creating debug report"); err != nil {
			vk.DestroyInstance(i.instance, nil)
			return nil, err
		}
	}

	return &i, nil
}

// enabledExtensions appends the requested extensions the loader offers to the
// required ones and reports whether debug report is among them.
func enabledExtensions(required, requested, available []string, log logger.Logger) ([]string, bool) {
	names := make([]string, 0, len(required)+len(requested))
	for _, name := range required {
		names = append(names, vkString(name))
	}

	debug := false
	for _, name := range requested {
		if inStringSlice(names, vkString(name)) {
			continue
		}
		if !inStringSlice(available, name) {
			log.Warn("missing extension %s", name)
			continue
		}
		if name == debugReportExtension {
			debug = true
		}
		names = append(names, vkString(name))
	}
	return names, debug
}

func (i *Instance) Destroy() {
	if i.dbg != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.instance, i.dbg, nil)
	}

	vk.DestroyInstance(i.instance, nil)
}

func (i *Instance) debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		i.log.Err(nil, "VK %d: %s on layer %s", messageCode, pMessage, pLayerPrefix)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		i.log.Warn("VK %d: %s on layer %s", messageCode, pMessage, pLayerPrefix)
	default:
		i.log.Trace("VK unknown debug message %d (layer %s)", messageCode, pLayerPrefix)
	}
	return vk.Bool32(vk.False)
}

func (i *Instance) EnumerateGPUs() ([]driver.GPU, error) {
	var gpuCount uint32
	if err := check(vk.EnumeratePhysicalDevices(i.instance, &gpuCount, nil), "could not count gpus"); err != nil {
		return nil, err
	}
	if gpuCount == 0 {
		return nil, errors.New("no valid gpus")
	}
	vkGPUs := make([]vk.PhysicalDevice, gpuCount)
	if err := check(vk.EnumeratePhysicalDevices(i.instance, &gpuCount, vkGPUs), "could not enumerate gpus"); err != nil {
		return nil, err
	}

	gpus := make([]driver.GPU, gpuCount)
	for t, gpu := range vkGPUs {
		g := newGPU(gpu, i.log)
		i.log.Trace("# GPU %d\n%s", t, g.Debug())
		gpus[t] = g
	}

	return gpus, nil
}

// CreateWindowSurface creates a surface for a native window handle as
// returned by the windowing library.
func (i *Instance) CreateWindowSurface(windowHandle uintptr) (driver.Surface, error) {
	s, err := newWindowSurface(i, windowHandle)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (i *Instance) Handle() vk.Instance {
	return i.instance
}
