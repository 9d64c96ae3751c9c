package controller

import (
	"github.com/cinesync/server/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdMw())
	mux.Use(c.wsLoggingMw())
	mux.OnError(c.wsErrorHandler)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)

	// chat
	wsrouter.Handle(mux, "SEND_MESSAGE", c.handleSendMessage)

	// player
	wsrouter.Handle(mux, "PLAY", c.handlePlay)
	wsrouter.Handle(mux, "PAUSE", c.handlePause)
	wsrouter.Handle(mux, "SEEK", c.handleSeek)
	wsrouter.Handle(mux, "REPORT_DURATION", c.handleReportDuration)
	wsrouter.Handle(mux, "PLAYER_TICK", c.handlePlayerTick)

	// membership
	wsrouter.Handle(mux, "LEAVE_ROOM", c.handleLeaveRoom)

	return mux
}
