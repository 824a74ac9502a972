package feed

// Canonicalizer applies the normalization shared by every source: plain-text
// descriptions, clean author names, RFC 3339 timestamps and cleaned links.
type Canonicalizer struct {
	urlCleaner *URLCleaner
	maxLength  int
}

func NewCanonicalizer(urlCleaner *URLCleaner) *Canonicalizer {
	return &Canonicalizer{
		urlCleaner: urlCleaner,
		maxLength:  MaxDescriptionLength,
	}
}

func (c *Canonicalizer) Run(posts []Post) []Post {
	result := make([]Post, 0, len(posts))
	for _, post := range posts {
		result = append(result, c.Apply(post))
	}
	return result
}

func (c *Canonicalizer) Apply(post Post) Post {
	post.Title = collapseWhitespace(DecodeEntities(post.Title))
	post.Description = StripHTML(post.Description, c.maxLength)
	post.Author = CleanAuthor(post.Author)
	post.PublishedAt = NormalizeTimestamp(post.PublishedAt)
	if c.urlCleaner != nil {
		post.Link = c.urlCleaner.Run(post.Link)
	}
	return post
}
