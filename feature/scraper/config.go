package scraper

import "time"

// BrowserConfig holds configuration for the headless browser.
type BrowserConfig struct {
	// Headless runs chrome without a window.
	Headless bool `mapstructure:"headless" default:"true"`
	// ExecPath overrides the chrome binary lookup.
	ExecPath string `mapstructure:"exec_path" default:""`
	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0 Safari/537.36"`
	// PageTimeout bounds navigation and waits for page content.
	PageTimeout time.Duration `mapstructure:"page_timeout" default:"60s"`
	// LoadDelay is waited after navigation before interacting.
	LoadDelay time.Duration `mapstructure:"load_delay" default:"2s"`
	// ClickTimeout bounds the wait for a reveal control to become clickable.
	ClickTimeout time.Duration `mapstructure:"click_timeout" default:"10s"`
	// Settle is waited after each reveal click.
	Settle time.Duration `mapstructure:"settle" default:"1s"`
	// MaxRevealDuration caps the whole reveal-more loop of one page.
	MaxRevealDuration time.Duration `mapstructure:"max_reveal_duration" default:"2m"`
	// MaxRevealClicks caps the number of reveal clicks on one page.
	MaxRevealClicks int `mapstructure:"max_reveal_clicks" default:"100"`
}

// RevealOptions derives the reveal-more limits from the browser configuration.
func (c BrowserConfig) RevealOptions() RevealOptions {
	return RevealOptions{
		ClickTimeout: c.ClickTimeout,
		Settle:       c.Settle,
		MaxDuration:  c.MaxRevealDuration,
		MaxClicks:    c.MaxRevealClicks,
	}
}

// PageConfig describes how to read titles from one listing page.
type PageConfig struct {
	// URL of the listing.
	URL string
	// TitleSelector matches the title-bearing text nodes.
	TitleSelector string
	// RevealSelector, when set, is clicked until no more rows appear.
	RevealSelector string
	// FilterSelector, when set, is clicked once before waiting for titles.
	FilterSelector string
	// Scroll scrolls to the bottom before each reveal click.
	Scroll bool
}

// ChainConfig is the pair of listing pages of one theater chain.
type ChainConfig struct {
	// Name is the chain's name in the theaters table.
	Name       string
	NowShowing PageConfig
	Upcoming   PageConfig
}

// CGVConfig holds the CGV listing pages.
type CGVConfig struct {
	NowShowingURL    string `mapstructure:"now_showing_url" default:"http://www.cgv.co.kr/movies/?lt=1&ft=0"`
	NowShowingFilter string `mapstructure:"now_showing_filter" default:""`
	UpcomingURL      string `mapstructure:"upcoming_url" default:"http://www.cgv.co.kr/movies/pre-movies.aspx"`
	TitleSelector    string `mapstructure:"title_selector" default:"strong.title"`
}

// Chain converts the configuration into a ChainConfig.
func (c CGVConfig) Chain(name string) ChainConfig {
	return ChainConfig{
		Name: name,
		NowShowing: PageConfig{
			URL:            c.NowShowingURL,
			TitleSelector:  c.TitleSelector,
			FilterSelector: c.NowShowingFilter,
		},
		Upcoming: PageConfig{
			URL:           c.UpcomingURL,
			TitleSelector: c.TitleSelector,
		},
	}
}

// MegaboxConfig holds the Megabox listing pages.
type MegaboxConfig struct {
	NowShowingURL    string `mapstructure:"now_showing_url" default:"https://www.megabox.co.kr/movie"`
	NowShowingReveal string `mapstructure:"now_showing_reveal" default:"div.onair-condition > button"`
	UpcomingURL      string `mapstructure:"upcoming_url" default:"https://www.megabox.co.kr/movie/comingsoon"`
	UpcomingReveal   string `mapstructure:"upcoming_reveal" default:"#btnAddMovie"`
	TitleSelector    string `mapstructure:"title_selector" default:"p.tit"`
}

// Chain converts the configuration into a ChainConfig.
func (c MegaboxConfig) Chain(name string) ChainConfig {
	return ChainConfig{
		Name: name,
		NowShowing: PageConfig{
			URL:            c.NowShowingURL,
			TitleSelector:  c.TitleSelector,
			RevealSelector: c.NowShowingReveal,
		},
		Upcoming: PageConfig{
			URL:            c.UpcomingURL,
			TitleSelector:  c.TitleSelector,
			RevealSelector: c.UpcomingReveal,
		},
	}
}

// LotteConfig holds the Lotte Cinema listing pages.
type LotteConfig struct {
	NowShowingURL      string `mapstructure:"now_showing_url" default:"https://www.lottecinema.co.kr/NLCHS/Movie/List?flag=1"`
	NowShowingSelector string `mapstructure:"now_showing_selector" default:"div.btm_info > strong"`
	UpcomingURL        string `mapstructure:"upcoming_url" default:"https://www.lottecinema.co.kr/NLCHS/Movie/List?flag=5"`
	UpcomingSelector   string `mapstructure:"upcoming_selector" default:"strong.tit_info"`
	UpcomingReveal     string `mapstructure:"upcoming_reveal" default:"button.btn_txt_more"`
}

// Chain converts the configuration into a ChainConfig.
func (c LotteConfig) Chain(name string) ChainConfig {
	return ChainConfig{
		Name: name,
		NowShowing: PageConfig{
			URL:           c.NowShowingURL,
			TitleSelector: c.NowShowingSelector,
		},
		Upcoming: PageConfig{
			URL:            c.UpcomingURL,
			TitleSelector:  c.UpcomingSelector,
			RevealSelector: c.UpcomingReveal,
			Scroll:         true,
		},
	}
}

// UnogsConfig holds the streaming catalog's expiring page.
type UnogsConfig struct {
	URL string `mapstructure:"url" default:"https://unogs.com/countrydetail/"`
	// WaitTime bounds each wait for catalog content.
	WaitTime time.Duration `mapstructure:"wait_time" default:"30s"`
	// ExpiringButtonIndex picks the expiring tab among div.btn-group-vertical buttons.
	ExpiringButtonIndex int    `mapstructure:"expiring_button_index" default:"3"`
	ButtonSelector      string `mapstructure:"button_selector" default:"div.btn-group-vertical button"`
	ButtonGroupSelector string `mapstructure:"button_group_selector" default:"div.btn-group-vertical"`
	TableSelector       string `mapstructure:"table_selector" default:"table.table"`
	RowSelector         string `mapstructure:"row_selector" default:"table.table tbody tr"`
}
