package feed

// Markup hooks of the Hugging Face daily papers pages.
const (
	listingCardSelector = "div.from-gray-50-to-white"
	cardTitleSelector   = "h3 a"
	upvoteSelector      = "div.font-semibold.text-orange-500"

	abstractHeading = "Abstract"

	linkTextPDF           = "View PDF"
	linkTextArxiv         = "View arXiv page"
	linkTextPaperOfTheDay = "Paper of the day"
)
