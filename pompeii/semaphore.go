package pompeii

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

type Semaphore struct {
	logicalDevice vk.Device
	semaphore     vk.Semaphore
}

func (d *Device) CreateSemaphore() (driver.Semaphore, error) {
	s := Semaphore{
		logicalDevice: d.Handle(),
	}

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	if err := check(vk.CreateSemaphore(d.Handle(), &semaphoreCreateInfo, nil, &s.semaphore), "create semaphore"); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Semaphore) Destroy() {
	if s.semaphore != vk.NullSemaphore {
		vk.DestroySemaphore(s.logicalDevice, s.semaphore, nil)
		s.semaphore = vk.NullSemaphore
	}
}

type Fence struct {
	logicalDevice vk.Device
	fence         vk.Fence
}

func (d *Device) CreateFence(signaled bool) (driver.Fence, error) {
	f := Fence{
		logicalDevice: d.Handle(),
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	if err := check(vk.CreateFence(d.Handle(), &fenceCreateInfo, nil, &f.fence), "create fence"); err != nil {
		return nil, err
	}

	return &f, nil
}

func (f *Fence) Wait(timeout uint64) error {
	return check(vk.WaitForFences(f.logicalDevice, 1, []vk.Fence{f.fence}, vk.True, timeout), "wait for fence")
}

func (f *Fence) Reset() error {
	return check(vk.ResetFences(f.logicalDevice, 1, []vk.Fence{f.fence}), "reset fence")
}

func (f *Fence) Destroy() {
	if f.fence != vk.NullFence {
		vk.DestroyFence(f.logicalDevice, f.fence, nil)
		f.fence = vk.NullFence
	}
}
