package engsel

import (
	"context"
	"fmt"

	"github.com/Veraticus/kuota/internal/model"
)

const (
	pathMyQuotas      = "api/v8/packages/quota-details"
	pathStoreFamilies = "api/v8/xl-stores/options/search/family-list"
	pathStorePackages = "api/v9/xl-stores/options/search"
)

type quotaRequest struct {
	Lang           string `json:"lang"`
	FamilyMemberID string `json:"family_member_id"`
	IsEnterprise   bool   `json:"is_enterprise"`
}

type quotaData struct {
	Quotas []model.Quota `json:"quotas"`
}

// GetMyQuotas lists the packages active on the session's line.
func (c *Client) GetMyQuotas(ctx context.Context) ([]model.Quota, error) {
	var data quotaData
	if err := c.lookup(ctx, pathMyQuotas, quotaRequest{Lang: "en"}, &data); err != nil {
		return nil, fmt.Errorf("active packages: %w", err)
	}
	return data.Quotas, nil
}

type storeSearchRequest struct {
	SubsType     string `json:"substype"`
	Lang         string `json:"lang"`
	Keyword      string `json:"text_search"`
	IsEnterprise bool   `json:"is_enterprise"`
}

type storePackagesRequest struct {
	storeSearchRequest
	Page int `json:"page"`
}

type storeFamiliesData struct {
	Results []model.StoreFamily `json:"results"`
}

type storePackagesData struct {
	Results []model.StorePackage `json:"results_price_only"`
}

// StoreQuery selects which catalogue the store search covers.
type StoreQuery struct {
	SubscriptionType string
	IsEnterprise     bool
}

func (c *Client) storeSearch(q StoreQuery) storeSearchRequest {
	subsType := q.SubscriptionType
	if subsType == "" {
		subsType = c.session.SubscriptionType
	}
	if subsType == "" {
		subsType = "PREPAID"
	}
	return storeSearchRequest{SubsType: subsType, Lang: "en", IsEnterprise: q.IsEnterprise}
}

// GetStoreFamilies lists the package families offered by the store.
func (c *Client) GetStoreFamilies(ctx context.Context, q StoreQuery) ([]model.StoreFamily, error) {
	var data storeFamiliesData
	if err := c.lookup(ctx, pathStoreFamilies, c.storeSearch(q), &data); err != nil {
		return nil, fmt.Errorf("store families: %w", err)
	}
	return data.Results, nil
}

// GetStorePackages lists the first page of the store's packages.
func (c *Client) GetStorePackages(ctx context.Context, q StoreQuery) ([]model.StorePackage, error) {
	var data storePackagesData
	req := storePackagesRequest{storeSearchRequest: c.storeSearch(q), Page: 1}
	if err := c.lookup(ctx, pathStorePackages, req, &data); err != nil {
		return nil, fmt.Errorf("store packages: %w", err)
	}
	return data.Results, nil
}
