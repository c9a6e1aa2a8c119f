package policy

import (
	"testing"

	"market-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	tests := []struct {
		role     domain.Role
		resource Resource
		action   Action
		want     bool
	}{
		{domain.RoleConsumer, Orders, Create, true},
		{domain.RoleConsumer, Orders, UpdateStatus, false},
		{domain.RoleAdmin, Orders, UpdateStatus, true},
		{domain.RoleAdmin, Orders, ReadAny, true},
		{domain.RoleWholesaler, Orders, ReadAny, false},
		{domain.RoleConsumer, Payments, UpdateStatus, false},
		{domain.RoleProducer, Products, Manage, true},
		{domain.RoleConsumer, Products, Manage, false},
		{domain.RoleAdmin, Products, DeleteAny, true},
		{domain.RoleSuperseller, Users, Manage, false},
		{domain.Role("guest"), Orders, Read, false},
		{domain.RoleAdmin, Resource("unknown"), Read, false},
		{domain.RoleProducer, Dashboard(domain.RoleProducer), View, true},
		{domain.RoleConsumer, Dashboard(domain.RoleProducer), View, false},
		{domain.RoleAdmin, Dashboard(domain.RoleConsumer), View, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Allow(tt.role, tt.resource, tt.action), "%s %s %s", tt.role, tt.resource, tt.action)
	}
}
