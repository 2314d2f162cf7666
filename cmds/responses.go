package cmds

import (
	"github.com/Clinet/squadbot/pages"
	"github.com/Clinet/squadbot/services"
	"github.com/JoshuaDoes/json"
)

type CmdResp struct {
	*services.Message                  //Take on the fields of a service message
	Ready             bool             //When not ready, the response is still being prepared and must not be sent
	Pages             *pages.PagedList `json:"-"` //When set, the message is the first page and the rest can be flipped through
}

func NewCmdRespMsg(content string) *CmdResp {
	resp := &CmdResp{Message: &services.Message{Content: content}, Ready: true}
	return resp
}
func NewCmdRespEmbed(title, content string) *CmdResp {
	resp := &CmdResp{Message: &services.Message{Title: title, Content: content}, Ready: true}
	return resp
}
func CmdRespFromMsg(msg *services.Message) *CmdResp {
	return &CmdResp{Message: msg}
}

//NewCmdRespErr returns a ready red response
func NewCmdRespErr(content string) *CmdResp {
	return CmdRespFromMsg(services.NewMessage().SetContent(content).SetColor(services.ColorError)).SetReady(true)
}

//NewCmdRespWarn returns a ready yellow response
func NewCmdRespWarn(content string) *CmdResp {
	return CmdRespFromMsg(services.NewMessage().SetContent(content).SetColor(services.ColorWarning)).SetReady(true)
}

//NewCmdRespOK returns a ready response in the default color
func NewCmdRespOK(content string) *CmdResp {
	return CmdRespFromMsg(services.NewMessage().SetContent(content).SetColor(services.ColorOK)).SetReady(true)
}

//NewCmdRespPages returns a ready response showing the first page of the list
func NewCmdRespPages(list *pages.PagedList) *CmdResp {
	page, err := list.GetPage(1)
	if err != nil {
		return NewCmdRespErr(err.Error())
	}
	resp := CmdRespFromMsg(page).SetReady(true)
	if list.TotalPages > 1 {
		resp.Pages = list
	}
	return resp
}

func (resp *CmdResp) String() string {
	jsonData, err := json.Marshal(resp, true)
	if err != nil {
		return err.Error()
	}
	return string(jsonData)
}
func (resp *CmdResp) SetReady(ready bool) *CmdResp {
	resp.Ready = ready
	return resp
}
func (resp *CmdResp) SetColor(clr int) *CmdResp {
	resp.Color = &clr
	return resp
}
func (resp *CmdResp) SetContent(content string) *CmdResp {
	resp.Content = content
	return resp
}
func (resp *CmdResp) SetTitle(title string) *CmdResp {
	resp.Title = title
	return resp
}
func (resp *CmdResp) SetImage(image string) *CmdResp {
	resp.Image = image
	return resp
}
