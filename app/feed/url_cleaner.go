package feed

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
)

// trackingParams lists attribution query parameters stripped from every link.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"utm_id", "utm_name", "utm_reader", "utm_brand", "utm_social", "utm_social-type",
	"fbclid", "gclid", "gclsrc", "dclid", "msclkid", "twclid", "igshid",
	"li_fat_id", "yclid", "mc_cid", "mc_eid", "_hsenc", "_hsmi", "mkt_tok",
	"vero_id", "oly_anon_id", "oly_enc_id", "rb_clickid", "s_cid",
	"ref", "ref_src", "ref_url", "spm",
}

var trackingSet = lo.SliceToMap(trackingParams, func(param string) (string, struct{}) {
	return param, struct{}{}
})

type URLCleaner struct {
	campaignDomain string
	campaignParam  string
	now            func() time.Time
}

// NewURLCleaner returns a cleaner that also tags links under campaignDomain
// with campaignParam. An empty campaignDomain disables tagging.
func NewURLCleaner(campaignDomain, campaignParam string) *URLCleaner {
	return &URLCleaner{
		campaignDomain: strings.ToLower(strings.TrimPrefix(campaignDomain, "www.")),
		campaignParam:  campaignParam,
		now:            time.Now,
	}
}

// Run strips tracking parameters and applies the campaign tag. A link that
// does not parse is returned unchanged.
func (c *URLCleaner) Run(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return link
	}

	if u.RawQuery != "" {
		u.RawQuery = dropParams(u.RawQuery, func(key string) bool {
			_, ok := trackingSet[key]
			return ok
		})
	}

	if c.isCampaignHost(u.Hostname()) && c.campaignParam != "" {
		query := dropParams(u.RawQuery, func(key string) bool { return key == c.campaignParam })
		tag := url.QueryEscape(c.campaignParam) + "=" + url.QueryEscape(CampaignValue(c.now()))
		if query != "" {
			query += "&"
		}
		u.RawQuery = query + tag
	}

	return u.String()
}

// dropParams removes the segments of a raw query whose decoded key matches.
// Surviving segments keep their order and original encoding.
func dropParams(rawQuery string, drop func(key string) bool) string {
	kept := make([]string, 0, strings.Count(rawQuery, "&")+1)
	for _, segment := range strings.Split(rawQuery, "&") {
		if segment == "" {
			continue
		}
		key, _, _ := strings.Cut(segment, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if drop(key) {
			continue
		}
		kept = append(kept, segment)
	}
	return strings.Join(kept, "&")
}

func (c *URLCleaner) isCampaignHost(host string) bool {
	if c.campaignDomain == "" {
		return false
	}
	host = strings.ToLower(host)
	return host == c.campaignDomain || strings.HasSuffix(host, "."+c.campaignDomain)
}

// CampaignValue encodes the month and year as edm<mon><yy>, e.g. edmoct26.
func CampaignValue(t time.Time) string {
	return fmt.Sprintf("edm%s%02d", strings.ToLower(t.Format("Jan")), t.Year()%100)
}
