package masterdata

// The concrete resource catalog. Module segments follow the backend's
// /api/<module>/<resource> convention.

// FabricTypes is the product-development fabric type catalog.
func FabricTypes(deps Deps) Resource {
	return NewResource(deps, "product-development", "fabric-types")
}

// Users is the operator/user administration collection.
func Users(deps Deps) Resource {
	return NewResource(deps, "master", "users")
}

// Departments is the department lookup table.
func Departments(deps Deps) Resource {
	return NewResource(deps, "master", "departments")
}

// Roles is the role lookup table.
func Roles(deps Deps) Resource {
	return NewResource(deps, "master", "roles")
}

// DyeRecipes is the dyehouse recipe collection with its chemical lines.
func DyeRecipes(deps Deps) Resource {
	return NewResource(deps, "dyehouse", "recipes")
}

// ColorKartela is the color swatch catalog.
func ColorKartela(deps Deps) Resource {
	return NewResource(deps, "kartela", "colors")
}

// FabricKartela is the fabric swatch catalog.
func FabricKartela(deps Deps) Resource {
	return NewResource(deps, "kartela", "fabrics")
}

// ProductionPlans is the planning board's plan collection.
func ProductionPlans(deps Deps) Resource {
	return NewResource(deps, "planning", "plans")
}

// WeavingCards is the weaving production card collection.
func WeavingCards(deps Deps) Resource {
	return NewResource(deps, "weaving", "cards")
}

// YarnOrders is the yarn-spinning order collection.
func YarnOrders(deps Deps) Resource {
	return NewResource(deps, "yarn", "orders")
}

// YarnIssueCards is the yarn-warehouse issue card collection.
func YarnIssueCards(deps Deps) Resource {
	return NewResource(deps, "yarn-warehouse", "issue-cards")
}

// LabTests is the laboratory test record collection.
func LabTests(deps Deps) Resource {
	return NewResource(deps, "laboratory", "tests")
}
