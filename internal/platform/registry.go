package platform

import "runtime"

// Registry holds the profiles known to the shell.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry creates a registry with all default profiles.
func NewRegistry() *Registry {
	r := &Registry{
		profiles: make(map[string]Profile),
	}

	r.Register(NewUnixProfile("linux"))
	r.Register(NewDarwinProfile())
	r.Register(NewWindowsProfile())

	return r
}

// NewRegistryWithProfiles creates a registry with custom profiles (for testing).
func NewRegistryWithProfiles(profiles ...Profile) *Registry {
	r := &Registry{
		profiles: make(map[string]Profile),
	}
	for _, p := range profiles {
		r.Register(p)
	}
	return r
}

// Register adds a profile to the registry.
func (r *Registry) Register(p Profile) {
	r.profiles[p.ID()] = p
}

// Get returns the profile for goos. Unknown systems get a generic unix profile.
func (r *Registry) Get(goos string) Profile {
	if p, ok := r.profiles[goos]; ok {
		return p
	}
	return NewUnixProfile(goos)
}

// Current returns the profile of the running system.
func (r *Registry) Current() Profile {
	return r.Get(runtime.GOOS)
}
