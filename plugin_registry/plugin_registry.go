package plugin_registry

import (
	"fmt"
	"sort"

	"github.com/serisow/storystudio/audio_service"
	"github.com/serisow/storystudio/image_service"
	"github.com/serisow/storystudio/step"
)

// PluginRegistry resolves step types and optional media backends by name.
type PluginRegistry struct {
	stepTypes     map[string]func() step.Step
	imageBackends map[string]image_service.ImageBackend
	voiceBackends map[string]audio_service.VoiceBackend
}

func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		stepTypes:     make(map[string]func() step.Step),
		imageBackends: make(map[string]image_service.ImageBackend),
		voiceBackends: make(map[string]audio_service.VoiceBackend),
	}
}

// RegisterStepType registers a new step type
func (pr *PluginRegistry) RegisterStepType(typeName string, factory func() step.Step) {
	pr.stepTypes[typeName] = factory
}

// GetStepInstance returns a new instance of a step type
func (pr *PluginRegistry) GetStepInstance(typeName string) (step.Step, error) {
	factory, ok := pr.stepTypes[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown step type: %s", typeName)
	}
	return factory(), nil
}

// Steps instantiates the named step types in order.
func (pr *PluginRegistry) Steps(typeNames ...string) ([]step.Step, error) {
	steps := make([]step.Step, 0, len(typeNames))
	for _, name := range typeNames {
		s, err := pr.GetStepInstance(name)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// StepTypes lists registered step types, sorted.
func (pr *PluginRegistry) StepTypes() []string {
	names := make([]string, 0, len(pr.stepTypes))
	for name := range pr.stepTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (pr *PluginRegistry) RegisterImageBackend(name string, backend image_service.ImageBackend) {
	pr.imageBackends[name] = backend
}

// GetImageBackend returns an image backend by name. An empty name is never
// registered and means procedural synthesis only.
func (pr *PluginRegistry) GetImageBackend(name string) (image_service.ImageBackend, bool) {
	backend, ok := pr.imageBackends[name]
	return backend, ok
}

func (pr *PluginRegistry) RegisterVoiceBackend(name string, backend audio_service.VoiceBackend) {
	pr.voiceBackends[name] = backend
}

// GetVoiceBackend returns a voice backend by name
func (pr *PluginRegistry) GetVoiceBackend(name string) (audio_service.VoiceBackend, bool) {
	backend, ok := pr.voiceBackends[name]
	return backend, ok
}
