package marketplace

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/optomall/optomall/internal/catalog"
	"github.com/optomall/optomall/internal/platform/httpx"
)

// The aggregator exposes no review endpoint, so reviews are synthesized
// deterministically from the product id: the same product always shows the
// same review set.
var reviewAuthors = []string{
	"Aziz K.", "Dilnoza M.", "Jamshid T.", "Malika R.", "Sardor B.",
	"Nilufar S.", "Rustam A.", "Gulnora Y.",
}

var reviewTexts = []string{
	"Quality matches the listing photos. Shipping took about two weeks.",
	"Ordered a sample batch first, then a full carton. Supplier was responsive.",
	"Good value for the price, packaging could be better.",
	"Exactly as described. Will reorder.",
	"Minor color difference from the photos but acceptable.",
	"Fast customs clearance, all units arrived intact.",
}

// ProductReviews returns the review feed for a product. Unknown and
// non-numeric ids behave like the detail endpoint and return not-found.
func (s *Service) ProductReviews(ctx context.Context, id string) (*ReviewsResponse, error) {
	if !numericID(id) {
		return nil, fmt.Errorf("%w: product %q", httpx.ErrNotFound, id)
	}

	seed := fnv.New64a()
	_, _ = seed.Write([]byte(id))
	h := seed.Sum64()

	total := int(h%47) + 3
	count := total
	if count > 6 {
		count = 6
	}

	reviews := make([]catalog.Review, 0, count)
	var ratingSum float64
	for i := 0; i < count; i++ {
		// 3.5 to 5.0 in half-star steps.
		rating := 3.5 + float64((h>>uint(i*7))%4)*0.5
		ratingSum += rating
		date := time.Now().AddDate(0, 0, -int((h>>uint(i*5))%120)).Format("2006-01-02")
		reviews = append(reviews, catalog.Review{
			Author:  reviewAuthors[(h>>uint(i*3))%uint64(len(reviewAuthors))],
			Rating:  rating,
			Content: reviewTexts[(h>>uint(i*4))%uint64(len(reviewTexts))],
			Date:    date,
		})
	}

	avg := 4.5
	if count > 0 {
		avg = ratingSum / float64(count)
	}

	return &ReviewsResponse{Data: reviews, Rating: avg, Total: total}, nil
}
