package repository

import (
	"strings"
	"testing"
)

func TestCatalogQueriesAreTenantScoped(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		fragment string
	}{
		{"get product", getProductQuery, "where id = $1 and organization_id = $2"},
		{"list products", listProductsQuery, "where organization_id = $1"},
		{"get service", getServiceQuery, "where id = $1 and organization_id = $2"},
		{"list services", listServicesQuery, "where organization_id = $1"},
		{"list warehouses", listWarehousesQuery, "where organization_id = $1"},
	}

	for _, tc := range cases {
		if !strings.Contains(strings.ToLower(tc.query), tc.fragment) {
			t.Fatalf("%s: expected tenant-scoped fragment %q", tc.name, tc.fragment)
		}
	}
}

func TestInventoryLevelsScopeThroughWarehouse(t *testing.T) {
	query := strings.ToLower(listLevelsByWarehouseQuery)
	if !strings.Contains(query, "join warehouses w on w.id = il.warehouse_id") {
		t.Fatal("expected levels to join warehouses for tenant scoping")
	}
	if !strings.Contains(query, "w.organization_id = $2") {
		t.Fatal("expected levels to filter on the warehouse organization")
	}
}

func TestAdjustOnHandCannotDropBelowReserved(t *testing.T) {
	query := strings.ToLower(adjustOnHandQuery)
	if !strings.Contains(query, "il.on_hand + $3 >= il.reserved") {
		t.Fatal("expected the adjustment to be blocked below the reserved quantity")
	}
	if !strings.Contains(query, "w.organization_id = $5") {
		t.Fatal("expected the adjustment to be tenant scoped through the warehouse")
	}
}
