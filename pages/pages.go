package pages

import (
	"fmt"
	"math"

	"github.com/Clinet/discordgo-embed"
	"github.com/Clinet/squadbot/services"
)

type PagedList struct {
	Title      string                   `json:"title"`      //Title shown on every page
	Color      int                      `json:"color"`      //Embed color for every page
	Items      []*services.MessageField `json:"pageItems"`  //The items to be paginated
	MaxResults int                      `json:"maxResults"` //The maximum results per page
	PageNumber int                      `json:"pageNumber"` //The current page number
	TotalPages int                      `json:"totalPages"` //The total amount of pages available
	FirstPage  bool                     `json:"firstPage"`  //Whether or not we're on the first page
	LastPage   bool                     `json:"lastPage"`   //Whether or not we're on the last page
}

//NewPagedList returns a new paginated items list
func NewPagedList(items []*services.MessageField, maxResults int) (*PagedList, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("No page items found.")
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("Maximum results %d too low.", maxResults)
	}

	totalPages := pageCount(len(items), maxResults)
	return &PagedList{
		Items:      items,
		Color:      services.ColorInfo,
		MaxResults: maxResults,
		PageNumber: 1,
		TotalPages: totalPages,
		FirstPage:  true,
		LastPage:   totalPages == 1,
	}, nil
}

func pageCount(items, maxResults int) int {
	return int(math.Ceil(float64(items) / float64(maxResults)))
}

func (pagedList *PagedList) SetTitle(title string) *PagedList {
	pagedList.Title = title
	return pagedList
}
func (pagedList *PagedList) SetColor(clr int) *PagedList {
	pagedList.Color = clr
	return pagedList
}

//GetPage returns a certain page from a paginated items list
func (pagedList *PagedList) GetPage(pageNumber int) (*services.Message, error) {
	if err := pagedList.Check(); err != nil {
		return nil, err
	}
	if pageNumber <= 0 {
		return nil, fmt.Errorf("Page number %d too low.", pageNumber)
	}

	pagedList.TotalPages = pageCount(len(pagedList.Items), pagedList.MaxResults)
	if pageNumber > pagedList.TotalPages {
		return nil, fmt.Errorf("Page number %d too high.", pageNumber)
	}

	pagedList.PageNumber = pageNumber
	pagedList.FirstPage = pageNumber == 1
	pagedList.LastPage = pageNumber == pagedList.TotalPages

	low := (pagedList.PageNumber - 1) * pagedList.MaxResults
	high := pagedList.PageNumber * pagedList.MaxResults
	if high > len(pagedList.Items) {
		high = len(pagedList.Items)
	}

	page := services.NewMessage().
		SetTitle(pagedList.Title).
		SetColor(pagedList.Color).
		SetFooter(fmt.Sprintf("Page %d/%d", pagedList.PageNumber, pagedList.TotalPages))
	page.Fields = pagedList.Items[low:high]
	return page, nil
}

//GetCurrentPage returns the current page
func (pagedList *PagedList) GetCurrentPage() (*services.Message, error) {
	return pagedList.GetPage(pagedList.PageNumber)
}

//GetNextPage returns the next page
func (pagedList *PagedList) GetNextPage() (*services.Message, error) {
	return pagedList.GetPage(pagedList.PageNumber + 1)
}

//GetPreviousPage returns the previous page
func (pagedList *PagedList) GetPreviousPage() (*services.Message, error) {
	return pagedList.GetPage(pagedList.PageNumber - 1)
}

func (pagedList *PagedList) Check() error {
	if len(pagedList.Items) == 0 {
		return fmt.Errorf("No page items found.")
	}
	if pagedList.MaxResults <= 0 {
		return fmt.Errorf("Maximum results %d too low.", pagedList.MaxResults)
	}
	if pagedList.MaxResults >= embed.EmbedLimitField {
		return fmt.Errorf("Maximum results %d too high.", pagedList.MaxResults)
	}
	if pagedList.PageNumber <= 0 {
		return fmt.Errorf("Page number %d too low.", pagedList.PageNumber)
	}
	if pagedList.PageNumber > pageCount(len(pagedList.Items), pagedList.MaxResults) {
		return fmt.Errorf("Page number %d too high.", pagedList.PageNumber)
	}
	return nil
}
