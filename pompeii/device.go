package pompeii

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

type Device struct {
	GraphicsIndex int
	PresentIndex  int

	gpu           *GPU
	logicalDevice vk.Device
	graphics      *Queue
	present       *Queue
}

// newDevice creates a logical device with one queue per distinct family
// and the swapchain extension enabled.
func newDevice(g *GPU, graphicsFamilyIndex, presentFamilyIndex int) (*Device, error) {
	d := Device{
		GraphicsIndex: graphicsFamilyIndex,
		PresentIndex:  presentFamilyIndex,
		gpu:           g,
	}

	queuePriorities := []float32{1.0}
	queueInfos := []vk.DeviceQueueCreateInfo{
		{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(graphicsFamilyIndex),
			QueueCount:       uint32(len(queuePriorities)),
			PQueuePriorities: queuePriorities,
		},
	}
	if presentFamilyIndex != graphicsFamilyIndex {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(presentFamilyIndex),
			QueueCount:       uint32(len(queuePriorities)),
			PQueuePriorities: queuePriorities,
		})
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   1,
		PpEnabledExtensionNames: []string{vkString(driver.SwapchainExtensionName)},
	}
	if err := check(vk.CreateDevice(g.Handle(), &deviceCreateInfo, nil, &d.logicalDevice), "create device"); err != nil {
		return nil, err
	}

	d.graphics = d.queue(graphicsFamilyIndex)
	d.present = d.graphics
	if presentFamilyIndex != graphicsFamilyIndex {
		d.present = d.queue(presentFamilyIndex)
	}

	return &d, nil
}

func (d *Device) queue(family int) *Queue {
	var q vk.Queue
	vk.GetDeviceQueue(d.logicalDevice, uint32(family), 0, &q)
	return &Queue{queue: q}
}

func (d *Device) GraphicsQueue() driver.Queue {
	return d.graphics
}

func (d *Device) PresentQueue() driver.Queue {
	return d.present
}

// Destroy destroys the device. Everything created from it must already be
// destroyed and idle.
func (d *Device) Destroy() {
	vk.DestroyDevice(d.logicalDevice, nil)
}

func (d *Device) WaitIdle() error {
	return check(vk.DeviceWaitIdle(d.logicalDevice), "device wait idle")
}

func (d *Device) Handle() vk.Device {
	return d.logicalDevice
}

type Queue struct {
	queue vk.Queue
}

func (q *Queue) Submit(info driver.SubmitInfo) error {
	buffers := make([]vk.CommandBuffer, len(info.CommandBuffers))
	for t, cb := range info.CommandBuffers {
		buffers[t] = cb.(*CommandBuffer).buffer
	}
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(info.WaitSemaphores)),
		PWaitSemaphores:      semaphores(info.WaitSemaphores),
		PWaitDstStageMask:    pipelineStages(info.WaitStages),
		CommandBufferCount:   uint32(len(buffers)),
		PCommandBuffers:      buffers,
		SignalSemaphoreCount: uint32(len(info.SignalSemaphores)),
		PSignalSemaphores:    semaphores(info.SignalSemaphores),
	}

	fence := vk.Fence(vk.NullHandle)
	if info.Fence != nil {
		fence = info.Fence.(*Fence).fence
	}
	return check(vk.QueueSubmit(q.queue, 1, []vk.SubmitInfo{submitInfo}, fence), "queue submit")
}

// Present queues one swapchain image. A suboptimal swapchain still presents
// and is not reported.
func (q *Queue) Present(info driver.PresentInfo) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(info.WaitSemaphores)),
		PWaitSemaphores:    semaphores(info.WaitSemaphores),
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{info.Swapchain.(*Swapchain).swapchain},
		PImageIndices:      []uint32{info.ImageIndex},
	}
	result := vk.QueuePresent(q.queue, &presentInfo)
	if result == vk.Suboptimal {
		return nil
	}
	return check(result, "queue present")
}

func (q *Queue) WaitIdle() error {
	return check(vk.QueueWaitIdle(q.queue), "queue wait idle")
}
