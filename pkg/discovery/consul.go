package discovery

import (
	"fmt"
	"log"
	"slices"
	"strconv"

	"practice-service/internal/config"

	"github.com/hashicorp/consul/api"
)

type ServiceRegistry struct {
	client *api.Client
	server config.ServerConfig
}

func NewServiceRegistry(cfg *config.Config) (*ServiceRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.Consul.ConsulAddress

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	return &ServiceRegistry{client: client, server: cfg.Server}, nil
}

func (sr *ServiceRegistry) Register() error {
	registration, err := buildRegistration(sr.server)
	if err != nil {
		return err
	}
	if err := sr.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register HTTP service with Consul: %w", err)
	}
	log.Printf("Registered %s with Consul as %s", sr.server.ServiceName, registration.ID)
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	if err := sr.client.Agent().ServiceDeregister(serviceID(sr.server)); err != nil {
		return fmt.Errorf("failed to deregister HTTP service: %w", err)
	}
	return nil
}

// GetServiceAddress returns host:port of the first healthy instance that
// speaks protocol (default http).
func (sr *ServiceRegistry) GetServiceAddress(serviceName string, protocol string) (string, error) {
	services, meta, err := sr.client.Health().Service(serviceName, "", true, &api.QueryOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to find service %s: %w", serviceName, err)
	}
	log.Printf("Found %d instances of service %s (ConsulIndex: %d)", len(services), serviceName, meta.LastIndex)

	return pickAddress(serviceName, protocol, services)
}

func buildRegistration(server config.ServerConfig) (*api.AgentServiceRegistration, error) {
	httpPort, err := strconv.Atoi(server.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid service port %q: %w", server.Port, err)
	}
	return &api.AgentServiceRegistration{
		ID:      serviceID(server),
		Name:    server.ServiceName,
		Port:    httpPort,
		Address: server.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%s/health", server.ServiceAddress, server.Port),
			Interval: "10s",
			Timeout:  "5s",
		},
		Tags: []string{"practice", "knowledge-test", "http"},
		Meta: map[string]string{
			"protocol": "http",
		},
	}, nil
}

func serviceID(server config.ServerConfig) string {
	return server.ServiceID + "-http"
}

func pickAddress(serviceName, protocol string, services []*api.ServiceEntry) (string, error) {
	if protocol == "" {
		protocol = "http"
	}
	for _, service := range services {
		if service.Service == nil {
			continue
		}
		proto, ok := service.Service.Meta["protocol"]
		if (ok && proto == protocol) || slices.Contains(service.Service.Tags, protocol) {
			address := service.Service.Address
			if address == "" && service.Node != nil {
				address = service.Node.Address
			}
			return fmt.Sprintf("%s:%d", address, service.Service.Port), nil
		}
	}
	return "", fmt.Errorf("no healthy instances of service %s with protocol %s found", serviceName, protocol)
}
