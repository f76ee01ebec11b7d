package catalog

// Link is a downloadable or viewable resource of a product.
type Link struct {
	Label string
	URL   string
}

// Product is one entry of the unlocked dashboard.
type Product struct {
	Title       string
	Description string
	Links       []Link
}

// ComingSoon reports whether the product has nothing to open yet.
func (p Product) ComingSoon() bool {
	return len(p.Links) == 0
}

var products = []Product{
	{
		Title:       "🤖 How to Create Your AI Model",
		Description: "Step-by-step guide to designing and launching your own AI influencer that works 24/7 without showing your face.",
		Links: []Link{
			{Label: "Watch Video 1", URL: "https://youtu.be/ss5bEkEKM3U?si=A4FXzuqbus6n8Hdj"},
			{Label: "Watch Video 2", URL: "https://youtu.be/fCH4C2VfjN0?si=-53jsXZW2pJKmgH-"},
		},
	},
	{
		Title:       "📱 AI Faceless Theme Page Course",
		Description: "Learn how to build viral theme pages on TikTok, Instagram & YouTube that grow fast and monetize with digital products.",
		Links: []Link{
			{Label: "View Blueprint 1", URL: "https://www.canva.com/design/DAGz2LhEgoQ/yVrKw0Gpsnohe7lgkCtbcA/view?utm_content=DAGz2LhEgoQ&utm_campaign=designshare&utm_medium=link&utm_source=publishsharelink&mode=preview"},
			{Label: "View Blueprint 2", URL: "https://www.canva.com/design/DAGz8kFfxMg/dxp_5qZZLHbyrkkEilpkAQ/view?utm_content=DAGz8kFfxMg&utm_campaign=designshare&utm_medium=link&utm_source=publishsharelink&mode=preview"},
		},
	},
	{
		Title:       "🔥 OnlyFans Blueprint",
		Description: "The proven system to launch and scale a profitable OnlyFans business (with or without showing your face).",
		Links: []Link{
			{Label: "Get the Blueprint", URL: "https://www.canva.com/design/DAGz0PVQxaw/zn8PdhapmxU_mzYYkNin5Q/edit?utm_content=DAGz0PVQxaw&utm_campaign=designshare&utm_medium=link2&utm_source=sharebutton"},
		},
	},
	{
		Title:       "⚡ Fanvue Blueprint",
		Description: "A full playbook for building your faceless or AI influencer empire on Fanvue, the new wave platform for creators.",
	},
	{
		Title:       "👣 Viral Feet Play Blueprint",
		Description: "The exact strategy to grow a faceless, niche page in the “feet economy” and monetize through viral marketing + subscribers.",
		Links: []Link{
			{Label: "Get the Blueprint", URL: "https://www.canva.com/design/DAG0Y-kfRhM/15jYAdXD8xKKX1MbV48FSg/edit?utm_content=DAG0Y-kfRhM&utm_campaign=designshare&utm_medium=link2&utm_source=sharebutton"},
		},
	},
	{
		Title:       "🌶️ Spicy AI Influencer",
		Description: "Advanced strategies for the spicy niche.",
		Links: []Link{
			{Label: "View Design 1", URL: "https://www.canva.com/design/DAG3bNUYAF0/Y3TC1s5L1h54jktp72QVlQ/view?utm_content=DAG3bNUYAF0&utm_campaign=designshare&utm_medium=link2&utm_source=uniquelinks&utlId=haf3d320798"},
			{Label: "View Design 2", URL: "https://www.canva.com/design/DAG3bE_KGVI/6Ls7i_SXCpIYEfqxbskTsA/view?utm_content=DAG3bE_KGVI&utm_campaign=designshare&utm_medium=link2&utm_source=uniquelinks&utlId=hb1de16f6d0"},
		},
	},
}

// Products returns the dashboard catalog. Callers may modify the result.
func Products() []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p
		out[i].Links = append([]Link(nil), p.Links...)
	}
	return out
}
