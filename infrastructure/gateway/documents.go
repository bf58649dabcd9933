package gateway

const messageFields = `
      id
      senderId
      receiverId
      messageBody
      timestamp
      sender {
        username
        profilePicture
      }`

const listMessagesDocument = `
  query ListMessages($filter: ModelMessageFilterInput, $limit: Int) {
    listMessages(filter: $filter, limit: $limit) {
      items {` + messageFields + `
      }
    }
  }`

const createMessageDocument = `
  mutation CreateMessage($input: CreateMessageInput!) {
    createMessage(input: $input) {` + messageFields + `
    }
  }`

const onCreateMessageDocument = `
  subscription OnCreateMessage($filter: ModelSubscriptionMessageFilterInput) {
    onCreateMessage(filter: $filter) {` + messageFields + `
    }
  }`

const listProjectsDocument = `
  query ListProjects($filter: ModelProjectFilterInput) {
    listProjects(filter: $filter) {
      items {
        id
        name
        description
        status
        timeline {
          created
          updated
          deadline
        }
        serviceType
        messages {
          id
          sender
          content
          timestamp
        }
      }
    }
  }`

const createProjectDocument = `
  mutation CreateProject($input: CreateProjectInput!) {
    createProject(input: $input) {
      id
      name
      description
      status
      timeline {
        created
        updated
        deadline
      }
      serviceType
    }
  }`

const updateProjectDocument = `
  mutation UpdateProject($input: UpdateProjectInput!) {
    updateProject(input: $input) {
      id
      status
      timeline {
        updated
      }
    }
  }`

const deleteProjectDocument = `
  mutation DeleteProject($input: DeleteProjectInput!) {
    deleteProject(input: $input) {
      id
    }
  }`

const addMessageDocument = `
  mutation AddMessage($input: AddMessageInput!) {
    addMessage(input: $input) {
      id
      messages {
        id
        sender
        content
        timestamp
      }
    }
  }`
