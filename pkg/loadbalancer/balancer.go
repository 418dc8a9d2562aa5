package loadbalancer

import "sync"

// LoadBalancer hands out backend targets round-robin. The gateway uses it to
// spread statement traffic across broker service replicas.
type LoadBalancer struct {
	targets []string
	mu      sync.Mutex
	current int
}

func New(targets []string) *LoadBalancer {
	return &LoadBalancer{targets: targets}
}

// NextTarget returns the next backend in rotation.
func (lb *LoadBalancer) NextTarget() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	target := lb.targets[lb.current]
	lb.current = (lb.current + 1) % len(lb.targets)
	return target
}
