// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package entitlements

import (
	"fmt"

	"github.com/canonical/entitlement-service/internal/types"
)

type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Billing lookup keys as configured on the external price objects. Monthly
// and yearly prices for the same tier map to the same internal plan.
var lookupKeyToPlan = map[string]Plan{
	"PRO_MONTHLY":        PlanPro,
	"PRO_YEARLY":         PlanPro,
	"ENTERPRISE_MONTHLY": PlanEnterprise,
	"ENTERPRISE_YEARLY":  PlanEnterprise,
}

// PlanFromLookupKey maps an external price lookup key to an internal plan.
func PlanFromLookupKey(key string) (Plan, error) {
	plan, ok := lookupKeyToPlan[key]
	if !ok {
		return "", fmt.Errorf("lookup key %q: %w", key, types.ErrUnknownPlan)
	}
	return plan, nil
}

// FeatureValue is either a boolean flag or a numeric limit. A numeric limit
// of -1 means unlimited.
type FeatureValue struct {
	Numeric bool
	Flag    bool
	Limit   int64
}

func flag(on bool) FeatureValue  { return FeatureValue{Flag: on} }
func limit(n int64) FeatureValue { return FeatureValue{Numeric: true, Limit: n} }

const (
	FeatureSeats          = "seats"
	FeatureWorkspaces     = "workspaces"
	FeatureStorageBytes   = "storage_bytes"
	FeatureAPIAccess      = "api_access"
	FeatureAuditLog       = "audit_log"
	FeatureSSOEnforcement = "sso_enforcement"
)

var planFeatures = map[Plan]map[string]FeatureValue{
	PlanFree: {
		FeatureSeats:          limit(5),
		FeatureWorkspaces:     limit(1),
		FeatureStorageBytes:   limit(500 * 1024 * 1024),
		FeatureAPIAccess:      flag(false),
		FeatureAuditLog:       flag(false),
		FeatureSSOEnforcement: flag(false),
	},
	PlanPro: {
		FeatureSeats:          limit(50),
		FeatureWorkspaces:     limit(20),
		FeatureStorageBytes:   limit(10 * 1024 * 1024 * 1024),
		FeatureAPIAccess:      flag(true),
		FeatureAuditLog:       flag(false),
		FeatureSSOEnforcement: flag(false),
	},
	PlanEnterprise: {
		FeatureSeats:          limit(-1),
		FeatureWorkspaces:     limit(-1),
		FeatureStorageBytes:   limit(-1),
		FeatureAPIAccess:      flag(true),
		FeatureAuditLog:       flag(true),
		FeatureSSOEnforcement: flag(true),
	},
}

// FeaturesForPlan returns the feature table for a plan, falling back to the
// free tier for anything unrecognized so a bad plan value never grants more
// than free.
func FeaturesForPlan(plan Plan) map[string]FeatureValue {
	if features, ok := planFeatures[plan]; ok {
		return features
	}
	return planFeatures[PlanFree]
}
