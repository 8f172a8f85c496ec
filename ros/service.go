package ros

// ServiceType describes a ROS service: its name, MD5 sum and the types of
// its request and response messages.
type ServiceType interface {
	MD5Sum() string
	Name() string
	RequestType() MessageType
	ResponseType() MessageType
	NewService() Service
}

// Service holds one request and its response.
type Service interface {
	ReqMessage() Message
	ResMessage() Message
}
