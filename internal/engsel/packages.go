package engsel

import (
	"context"
	"fmt"

	"github.com/Veraticus/kuota/internal/model"
	"github.com/Veraticus/kuota/internal/service"
)

const (
	pathPackageDetail = "api/v8/xl-stores/options/detail"
	pathFamilyList    = "api/v8/xl-stores/options/list"
	pathUnsubscribe   = "api/v8/packages/unsubscribe"
)

type packageDetailRequest struct {
	OptionCode       string `json:"package_option_code"`
	Lang             string `json:"lang"`
	SubscriptionType string `json:"subscription_type"`
	IsEnterprise     bool   `json:"is_enterprise"`
	IsUpsellPDP      bool   `json:"is_upsell_pdp"`
}

type familyRequest struct {
	FamilyCode       string `json:"package_family_code"`
	MigrationType    string `json:"migration_type"`
	SubscriptionType string `json:"subscription_type"`
	Lang             string `json:"lang"`
	IsEnterprise     bool   `json:"is_enterprise"`
	IsShowTagging    bool   `json:"is_show_tagging"`
}

// GetPackage fetches a package option with a confirmation token for this session.
func (c *Client) GetPackage(ctx context.Context, optionCode string) (*model.PackageDetail, error) {
	var detail model.PackageDetail
	err := c.lookup(ctx, pathPackageDetail, packageDetailRequest{
		OptionCode:       optionCode,
		Lang:             "en",
		SubscriptionType: c.session.SubscriptionType,
	}, &detail)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", optionCode, err)
	}
	if detail.Option.Code == "" {
		detail.Option.Code = optionCode
	}
	return &detail, nil
}

// GetFamily lists the variants of a package family. Listings are cached briefly.
func (c *Client) GetFamily(ctx context.Context, familyCode string, opts service.FamilyOptions) (*model.Family, error) {
	key := fmt.Sprintf("%s|%t|%s", familyCode, opts.IsEnterprise, opts.MigrationType)
	if family, ok := c.families.get(key); ok {
		return family, nil
	}

	migration := opts.MigrationType
	if migration == "" {
		migration = "NONE"
	}

	var family model.Family
	err := c.lookup(ctx, pathFamilyList, familyRequest{
		FamilyCode:       familyCode,
		MigrationType:    migration,
		SubscriptionType: c.session.SubscriptionType,
		Lang:             "en",
		IsEnterprise:     opts.IsEnterprise,
		IsShowTagging:    true,
	}, &family)
	if err != nil {
		return nil, fmt.Errorf("family %s: %w", familyCode, err)
	}

	c.families.set(key, &family)
	return &family, nil
}

type unsubscribeRequest struct {
	QuotaCode        string `json:"product_subscription_code"`
	SubscriptionType string `json:"product_subscription_type"`
	Domain           string `json:"product_domain"`
	Lang             string `json:"lang"`
}

// Unsubscribe stops an active package identified by its quota code.
func (c *Client) Unsubscribe(ctx context.Context, quotaCode, subscriptionType, domain string) error {
	status, env, err := c.post(ctx, pathUnsubscribe, unsubscribeRequest{
		QuotaCode:        quotaCode,
		SubscriptionType: subscriptionType,
		Domain:           domain,
		Lang:             "en",
	})
	if err != nil {
		return err
	}
	if status >= 400 || env.Status != string(model.StatusSuccess) {
		return fmt.Errorf("unsubscribe %s: %s %s", quotaCode, env.Status, env.Message)
	}
	return nil
}
