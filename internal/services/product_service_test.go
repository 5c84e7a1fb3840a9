// internal/services/product_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsquare/storefront/internal/models"
	"github.com/marketsquare/storefront/internal/policy"
)

func TestCreateProductRejectsNonSellers(t *testing.T) {
	svc := NewProductService(nil)

	req := &CreateProductRequest{
		CategoryID: uuid.New(),
		Name:       "Ceramic mug",
		Price:      12.50,
	}

	tests := []struct {
		name   string
		caller policy.Caller
		reason policy.Reason
	}{
		{"anonymous", policy.Anonymous(), policy.ReasonNotAuthenticated},
		{"buyer", policy.ForUser(uuid.New(), models.UserTypeBuyer), policy.ReasonNotSeller},
		{"admin", policy.ForUser(uuid.New(), models.UserTypeAdmin), policy.ReasonNotSeller},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(tt.caller, req)
			require.Error(t, err)

			var policyErr *PolicyError
			require.ErrorAs(t, err, &policyErr)
			assert.Equal(t, tt.reason, policyErr.Decision.Reason)
		})
	}
}

func TestCreateReviewRejectsAnonymous(t *testing.T) {
	svc := NewReviewService(nil)

	_, err := svc.CreateReview(policy.Anonymous(), uuid.New(), &CreateReviewRequest{Grade: 5})
	require.Error(t, err)

	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Equal(t, policy.ReasonNotAuthenticated, policyErr.Decision.Reason)
}

func TestGetProfileRejectsOtherUsers(t *testing.T) {
	svc := NewUserService(nil)

	caller := policy.ForUser(uuid.New(), models.UserTypeBuyer)

	_, err := svc.GetProfile(caller, uuid.New())
	require.Error(t, err)

	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Equal(t, policy.ReasonNotOwner, policyErr.Decision.Reason)
}

func TestCreateCategoryRejectsNonAdmins(t *testing.T) {
	svc := NewCategoryService(nil)

	req := &CreateCategoryRequest{Name: "Electronics"}

	tests := []struct {
		name   string
		caller policy.Caller
		reason policy.Reason
	}{
		{"anonymous", policy.Anonymous(), policy.ReasonNotAuthenticated},
		{"buyer", policy.ForUser(uuid.New(), models.UserTypeBuyer), policy.ReasonNotAdmin},
		{"seller", policy.ForUser(uuid.New(), models.UserTypeSeller), policy.ReasonNotAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCategory(tt.caller, req)
			require.Error(t, err)

			var policyErr *PolicyError
			require.ErrorAs(t, err, &policyErr)
			assert.Equal(t, tt.reason, policyErr.Decision.Reason)
		})
	}
}
